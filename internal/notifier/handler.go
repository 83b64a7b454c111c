package notifier

import (
	"context"
	"errors"
	"fmt"

	userserrors "servicelink/internal/users/errors"
	"servicelink/pkg/kafka"
	"servicelink/pkg/logger"
	"servicelink/pkg/metrics"
	"servicelink/pkg/model"
)

type UserLookup interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Handler turns booking events into an email for the party that did not
// cause the change.
type Handler struct {
	users  UserLookup
	sender EmailSender
	log    *logger.Logger
}

func NewHandler(users UserLookup, sender EmailSender, log *logger.Logger) *Handler {
	return &Handler{
		users:  users,
		sender: sender,
		log:    log,
	}
}

// Handle is a kafka.MessageHandler. Undecodable or unroutable events are
// permanent; directory and sender failures are transient.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}

	recipientID, err := recipient(event)
	if err != nil {
		return kafka.NewPermanentError("unroutable booking event", err)
	}

	user, err := h.users.FindByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return kafka.NewPermanentError("recipient not in directory", err)
		}
		return kafka.NewTransientError("failed to look up recipient", err)
	}
	if user.Email == "" {
		h.log.Warn("Recipient has no email, skipping",
			"booking_id", event.BookingID,
			"user_id", recipientID,
		)
		return nil
	}

	email := compose(event, user)
	if err := h.sender.Send(ctx, email); err != nil {
		return kafka.NewTransientError("failed to send email", err)
	}

	metrics.IncNotificationSent(string(event.Type))
	h.log.Info("Booking notification sent",
		"booking_id", event.BookingID,
		"event_type", event.Type,
		"user_id", recipientID,
		"correlation_id", msg.GetCorrelationID(),
	)
	return nil
}

func recipient(event model.BookingEvent) (string, error) {
	switch event.Type {
	case model.EventBookingRequested, model.EventBookingCancelled:
		return event.ProviderID, nil
	case model.EventBookingAccepted, model.EventBookingRejected:
		return event.CustomerID, nil
	default:
		return "", fmt.Errorf("unknown event type %q", event.Type)
	}
}

func compose(event model.BookingEvent, user *model.User) Email {
	title := event.ServiceTitle
	if title == "" {
		title = "your service"
	}
	date := event.RequestedFor.Format(model.DateLayout)

	var subject, body string
	switch event.Type {
	case model.EventBookingRequested:
		subject = fmt.Sprintf("New booking request for %s", title)
		body = fmt.Sprintf("A customer requested %s on %s. Review it in your incoming bookings.", title, date)
	case model.EventBookingAccepted:
		subject = fmt.Sprintf("Your booking for %s was accepted", title)
		body = fmt.Sprintf("Your booking for %s on %s was accepted.", title, date)
	case model.EventBookingRejected:
		subject = fmt.Sprintf("Your booking for %s was declined", title)
		body = fmt.Sprintf("Your booking for %s on %s was declined by the provider.", title, date)
	case model.EventBookingCancelled:
		subject = fmt.Sprintf("Booking for %s cancelled", title)
		body = fmt.Sprintf("The customer cancelled the booking for %s on %s.", title, date)
	}

	if user.FullName != "" {
		body = fmt.Sprintf("Hi %s,\n\n%s", user.FullName, body)
	}
	return Email{To: user.Email, Subject: subject, Body: body}
}
