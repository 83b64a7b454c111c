//go:build integration

package integration

import (
	"net/http"
	"testing"

	"servicelink/pkg/model"
	"servicelink/test/integration/testutil"
)

type flow struct {
	env    *testutil.TestEnv
	mongo  *testutil.MongoHelper
	client *testutil.Client

	provider      string
	otherProvider string
	customer      string
}

func setup(t *testing.T) *flow {
	t.Helper()
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	t.Cleanup(func() { env.Cleanup(t, mongo) })

	return &flow{
		env:           env,
		mongo:         mongo,
		client:        client,
		provider:      env.Token(t, testutil.Provider),
		otherProvider: env.Token(t, testutil.OtherProvider),
		customer:      env.Token(t, testutil.Customer),
	}
}

func (f *flow) createService(t *testing.T) model.Service {
	t.Helper()
	resp := f.client.POST(t, "/api/v1/services", f.provider, testutil.NewServiceBuilder().Build())
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var svc model.Service
	resp.Data(t, &svc)
	return svc
}

func (f *flow) requestBooking(t *testing.T, serviceID string, daysAhead int) model.Booking {
	t.Helper()
	resp := f.client.POST(t, "/api/v1/bookings", f.customer, testutil.BookingRequest(serviceID, daysAhead))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var b model.Booking
	resp.Data(t, &b)
	return b
}

func TestBookingFlow_AcceptTwiceIsStale(t *testing.T) {
	f := setup(t)
	svc := f.createService(t)
	booking := f.requestBooking(t, svc.ID, 1)

	if booking.Status != model.BookingPending || booking.ProviderID != testutil.Provider.ID {
		t.Fatalf("unexpected booking %+v", booking)
	}

	resp := f.client.POST(t, "/api/v1/bookings/id/"+booking.ID+"/accept", f.otherProvider, nil)
	testutil.AssertErrorCode(t, resp, http.StatusForbidden, "FORBIDDEN")

	resp = f.client.POST(t, "/api/v1/bookings/id/"+booking.ID+"/accept", f.provider, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = f.client.POST(t, "/api/v1/bookings/id/"+booking.ID+"/accept", f.provider, nil)
	testutil.AssertErrorCode(t, resp, http.StatusConflict, "STALE_STATE")

	if stored := f.mongo.FindBooking(t, booking.ID); stored.Status != model.BookingAccepted {
		t.Errorf("expected accepted in storage, got %s", stored.Status)
	}
}

func TestBookingFlow_CancelTwiceIsStale(t *testing.T) {
	f := setup(t)
	svc := f.createService(t)
	booking := f.requestBooking(t, svc.ID, 0)

	resp := f.client.POST(t, "/api/v1/bookings/id/"+booking.ID+"/cancel", f.customer, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = f.client.POST(t, "/api/v1/bookings/id/"+booking.ID+"/cancel", f.customer, nil)
	testutil.AssertErrorCode(t, resp, http.StatusConflict, "STALE_STATE")
}

func TestBookingFlow_PastDateRejected(t *testing.T) {
	f := setup(t)
	svc := f.createService(t)

	resp := f.client.POST(t, "/api/v1/bookings", f.customer, testutil.BookingRequest(svc.ID, -1))
	testutil.AssertErrorCode(t, resp, http.StatusUnprocessableEntity, "VALIDATION_ERROR")
}

func TestBookingFlow_ServiceWithBookingsCannotBeDeleted(t *testing.T) {
	f := setup(t)
	svc := f.createService(t)
	f.requestBooking(t, svc.ID, 2)

	resp := f.client.DELETE(t, "/api/v1/services/id/"+svc.ID, f.provider)
	testutil.AssertErrorCode(t, resp, http.StatusConflict, "CONFLICT")

	resp = f.client.PATCH(t, "/api/v1/services/id/"+svc.ID, f.provider, map[string]any{"is_active": false})
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = f.client.POST(t, "/api/v1/bookings", f.customer, testutil.BookingRequest(svc.ID, 2))
	testutil.AssertErrorCode(t, resp, http.StatusBadRequest, "INVALID_OPERATION")
}

func TestBookingFlow_IncomingQueue(t *testing.T) {
	f := setup(t)
	f.mongo.InsertUser(t, &model.User{ID: testutil.Customer.ID, Email: testutil.Customer.Email, Roles: []string{"User"}})
	svc := f.createService(t)
	later := f.requestBooking(t, svc.ID, 5)
	sooner := f.requestBooking(t, svc.ID, 1)

	resp := f.client.GET(t, "/api/v1/bookings/incoming", f.provider)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var items []model.BookingListItem
	resp.Data(t, &items)
	if len(items) != 2 {
		t.Fatalf("expected 2 pending bookings, got %d", len(items))
	}
	if items[0].BookingID != sooner.ID || items[1].BookingID != later.ID {
		t.Errorf("queue not ordered by requested date: %+v", items)
	}
	if items[0].CustomerEmail != testutil.Customer.Email {
		t.Errorf("expected customer email joined, got %q", items[0].CustomerEmail)
	}

	resp = f.client.GET(t, "/api/v1/bookings/incoming", f.customer)
	testutil.AssertErrorCode(t, resp, http.StatusForbidden, "FORBIDDEN")
}
