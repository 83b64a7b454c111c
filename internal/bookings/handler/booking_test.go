package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"servicelink/pkg/auth"
	apperrors "servicelink/pkg/errors"
	"servicelink/pkg/logger"
	"servicelink/pkg/model"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

type mockBookingLifecycle struct {
	requestFunc func(ctx context.Context, actor *auth.Actor, req *model.BookingRequest) (*model.Booking, error)
	acceptFunc  func(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error)
	cancelFunc  func(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error)
}

func (m *mockBookingLifecycle) Draft(ctx context.Context, actor *auth.Actor, serviceID string) (*model.BookingDraft, error) {
	return &model.BookingDraft{ServiceID: serviceID, RequestedFor: "2026-03-02"}, nil
}

func (m *mockBookingLifecycle) RequestBooking(ctx context.Context, actor *auth.Actor, req *model.BookingRequest) (*model.Booking, error) {
	if m.requestFunc != nil {
		return m.requestFunc(ctx, actor, req)
	}
	return &model.Booking{ID: "b1", ServiceID: req.ServiceID, CustomerID: actor.ID, Status: model.BookingPending}, nil
}

func (m *mockBookingLifecycle) ListMine(ctx context.Context, actor *auth.Actor) ([]*model.BookingListItem, error) {
	return []*model.BookingListItem{{BookingID: "b1", ServiceTitle: "Haircut", Status: model.BookingPending}}, nil
}

func (m *mockBookingLifecycle) ListIncoming(ctx context.Context, actor *auth.Actor) ([]*model.BookingListItem, error) {
	return nil, apperrors.Forbidden("Only providers have incoming bookings")
}

func (m *mockBookingLifecycle) GetByID(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error) {
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingLifecycle) Accept(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error) {
	if m.acceptFunc != nil {
		return m.acceptFunc(ctx, actor, id)
	}
	return &model.Booking{ID: id, Status: model.BookingAccepted}, nil
}

func (m *mockBookingLifecycle) Reject(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error) {
	return &model.Booking{ID: id, Status: model.BookingRejected}, nil
}

func (m *mockBookingLifecycle) Cancel(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, actor, id)
	}
	return &model.Booking{ID: id, Status: model.BookingCancelled}, nil
}

type stubVerifier map[string]*auth.Actor

func (v stubVerifier) Verify(token string) (*auth.Actor, error) {
	if actor, ok := v[token]; ok {
		return actor, nil
	}
	return nil, auth.ErrInvalidToken
}

var customerActor = &auth.Actor{ID: "user-1", Roles: []auth.Role{auth.RoleUser}}

func newTestRouter(svc *mockBookingLifecycle) *httprouter.Router {
	log := logger.Discard()
	mw := auth.NewMiddleware(stubVerifier{"customer-token": customerActor}, log)

	router := httprouter.New()
	NewBookingHandler(svc, mw, log).RegisterRoutes(router)
	return router
}

func doRequest(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAllRoutesRequireToken(t *testing.T) {
	router := newTestRouter(&mockBookingLifecycle{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/services/id/s1/booking-draft"},
		{http.MethodPost, "/api/v1/bookings"},
		{http.MethodGet, "/api/v1/bookings/mine"},
		{http.MethodGet, "/api/v1/bookings/incoming"},
		{http.MethodGet, "/api/v1/bookings/id/b1"},
		{http.MethodPost, "/api/v1/bookings/id/b1/accept"},
		{http.MethodPost, "/api/v1/bookings/id/b1/reject"},
		{http.MethodPost, "/api/v1/bookings/id/b1/cancel"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := doRequest(router, tt.method, tt.path, "", "")
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestRequestBooking_Returns201(t *testing.T) {
	var got *model.BookingRequest
	router := newTestRouter(&mockBookingLifecycle{
		requestFunc: func(ctx context.Context, actor *auth.Actor, req *model.BookingRequest) (*model.Booking, error) {
			got = req
			return &model.Booking{ID: "b1", CustomerID: actor.ID, Status: model.BookingPending}, nil
		},
	})

	body := `{"service_id":"65a000000000000000000001","requested_for":"2026-03-05","notes":"hi"}`
	w := doRequest(router, http.MethodPost, "/api/v1/bookings", "customer-token", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if got == nil || got.RequestedFor != "2026-03-05" || got.Notes != "hi" {
		t.Errorf("request not decoded: %+v", got)
	}

	var resp struct {
		Data model.Booking `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.CustomerID != customerActor.ID {
		t.Errorf("unexpected booking %+v", resp.Data)
	}
}

func TestTransitions_MapErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		svc    *mockBookingLifecycle
		status int
	}{
		{
			name:   "accept ok",
			path:   "/api/v1/bookings/id/b1/accept",
			svc:    &mockBookingLifecycle{},
			status: http.StatusOK,
		},
		{
			name: "accept stale",
			path: "/api/v1/bookings/id/b1/accept",
			svc: &mockBookingLifecycle{acceptFunc: func(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error) {
				return nil, apperrors.StaleState("Only pending bookings can be accepted.")
			}},
			status: http.StatusConflict,
		},
		{
			name: "cancel forbidden",
			path: "/api/v1/bookings/id/b1/cancel",
			svc: &mockBookingLifecycle{cancelFunc: func(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error) {
				return nil, apperrors.Forbidden("nope")
			}},
			status: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(newTestRouter(tt.svc), http.MethodPost, tt.path, "customer-token", "")
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestListIncoming_ForbiddenForCustomer(t *testing.T) {
	w := doRequest(newTestRouter(&mockBookingLifecycle{}), http.MethodGet, "/api/v1/bookings/incoming", "customer-token", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestDraft_ReturnsPrefill(t *testing.T) {
	w := doRequest(newTestRouter(&mockBookingLifecycle{}), http.MethodGet, "/api/v1/services/id/s1/booking-draft", "customer-token", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"requested_for":"2026-03-02"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}
