package model

import "time"

type BookingEventType string

const (
	EventBookingRequested BookingEventType = "booking.requested"
	EventBookingAccepted  BookingEventType = "booking.accepted"
	EventBookingRejected  BookingEventType = "booking.rejected"
	EventBookingCancelled BookingEventType = "booking.cancelled"

	BookingEventSchemaVersion = "1"
)

// BookingEvent is published after every committed booking mutation.
type BookingEvent struct {
	Type         BookingEventType `json:"event_type"`
	BookingID    string           `json:"booking_id"`
	ServiceID    string           `json:"service_id"`
	ServiceTitle string           `json:"service_title,omitempty"`
	CustomerID   string           `json:"customer_id"`
	ProviderID   string           `json:"provider_id"`
	Status       BookingStatus    `json:"status"`
	RequestedFor time.Time        `json:"requested_for"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

// EventTypeForStatus maps a terminal status to the event announcing it.
func EventTypeForStatus(status BookingStatus) BookingEventType {
	switch status {
	case BookingAccepted:
		return EventBookingAccepted
	case BookingRejected:
		return EventBookingRejected
	case BookingCancelled:
		return EventBookingCancelled
	default:
		return EventBookingRequested
	}
}

func NewBookingEvent(eventType BookingEventType, b *Booking, serviceTitle string, at time.Time) BookingEvent {
	return BookingEvent{
		Type:         eventType,
		BookingID:    b.ID,
		ServiceID:    b.ServiceID,
		ServiceTitle: serviceTitle,
		CustomerID:   b.CustomerID,
		ProviderID:   b.ProviderID,
		Status:       b.Status,
		RequestedFor: b.RequestedFor,
		OccurredAt:   at.UTC(),
	}
}
