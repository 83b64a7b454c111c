package events

import (
	"context"
	"fmt"

	"servicelink/pkg/kafka"
	"servicelink/pkg/logger"
	"servicelink/pkg/middleware"
	"servicelink/pkg/model"
)

// Publisher announces committed booking changes. Callers treat failures as
// non-fatal: the booking is already stored when Publish runs.
type Publisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer messagePublisher
	source   string
}

func NewKafkaPublisher(producer messagePublisher, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

// Publish keys the record by booking id so every event of one booking lands
// on the same partition, in order.
func (p *KafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(string(event.Type)).
		WithSchemaVersion(model.BookingEventSchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return fmt.Errorf("build %s message: %w", event.Type, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// LogPublisher is used when Kafka is disabled.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event model.BookingEvent) error {
	p.log.Info("Booking event",
		"event_type", event.Type,
		"booking_id", event.BookingID,
		"service_id", event.ServiceID,
		"status", event.Status,
	)
	return nil
}
