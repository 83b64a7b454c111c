package model

import (
	"time"
)

const (
	MaxBookingNotesLength = 1000
	DateLayout            = "2006-01-02"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

var AllBookingStatuses = []BookingStatus{BookingPending, BookingAccepted, BookingRejected, BookingCancelled}

// IsTerminal reports whether no further transitions are possible.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingAccepted || s == BookingRejected || s == BookingCancelled
}

// CanTransitionTo encodes the state machine: only pending bookings move,
// and only into one of the terminal states.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == BookingPending && next.IsTerminal()
}

func (s BookingStatus) IsValid() bool {
	for _, v := range AllBookingStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Booking struct {
	ID           string        `json:"id,omitempty" bson:"_id,omitempty"`
	ServiceID    string        `json:"service_id" bson:"service_id"`
	CustomerID   string        `json:"customer_id" bson:"customer_id"`
	ProviderID   string        `json:"provider_id" bson:"provider_id"`
	RequestedFor time.Time     `json:"requested_for" bson:"requested_for"`
	Notes        string        `json:"notes" bson:"notes"`
	Status       BookingStatus `json:"status" bson:"status"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

// NewBooking is the only constructor for bookings. ProviderID is copied from
// the service here and nowhere else.
func NewBooking(service *Service, customerID string, requestedFor time.Time, notes string, now time.Time) *Booking {
	now = now.UTC()
	return &Booking{
		ServiceID:    service.ID,
		CustomerID:   customerID,
		ProviderID:   service.ProviderID,
		RequestedFor: DateOnly(requestedFor),
		Notes:        notes,
		Status:       BookingPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// BookingRequest is the client payload for requesting a booking.
type BookingRequest struct {
	ServiceID    string `json:"service_id" validate:"required,mongodb"`
	RequestedFor string `json:"requested_for" validate:"required,datetime=2006-01-02"`
	Notes        string `json:"notes" validate:"max=1000"`
}

// BookingListItem is a booking joined with display data.
type BookingListItem struct {
	BookingID     string        `json:"booking_id"`
	ServiceID     string        `json:"service_id"`
	ServiceTitle  string        `json:"service_title"`
	RequestedFor  time.Time     `json:"requested_for"`
	CreatedAt     time.Time     `json:"created_at"`
	Status        BookingStatus `json:"status"`
	Notes         string        `json:"notes,omitempty"`
	CustomerEmail string        `json:"customer_email,omitempty"`
}

// BookingDraft prefills a booking form for a service.
type BookingDraft struct {
	ServiceID    string `json:"service_id"`
	ServiceTitle string `json:"service_title"`
	RequestedFor string `json:"requested_for"`
}

// DateOnly truncates t to midnight UTC of its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
