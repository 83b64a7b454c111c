package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"servicelink/pkg/kafka"
	"servicelink/pkg/logger"
	"servicelink/pkg/middleware"
	"servicelink/pkg/model"
)

type recordingProducer struct {
	msgs []kafka.Message
	err  error
}

func (p *recordingProducer) Publish(_ context.Context, msg kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func sampleEvent() model.BookingEvent {
	b := &model.Booking{
		ID:           "b1",
		ServiceID:    "s1",
		CustomerID:   "u1",
		ProviderID:   "p1",
		Status:       model.BookingAccepted,
		RequestedFor: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	return model.NewBookingEvent(model.EventBookingAccepted, b, "Haircut", time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := &recordingProducer{}
	p := NewKafkaPublisher(producer, "servicelink-api")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")
	if err := p.Publish(ctx, sampleEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(producer.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(producer.msgs))
	}
	msg := producer.msgs[0]
	if msg.Key != "b1" {
		t.Errorf("expected booking id key, got %q", msg.Key)
	}
	if msg.GetEventType() != string(model.EventBookingAccepted) {
		t.Errorf("unexpected event type header %q", msg.GetEventType())
	}
	if msg.GetCorrelationID() != "req-123" {
		t.Errorf("unexpected correlation id %q", msg.GetCorrelationID())
	}
	if msg.Headers[kafka.HeaderSchemaVersion] != model.BookingEventSchemaVersion {
		t.Error("schema version header missing")
	}

	var decoded model.BookingEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ServiceTitle != "Haircut" || decoded.Status != model.BookingAccepted {
		t.Errorf("unexpected payload %+v", decoded)
	}
}

func TestKafkaPublisher_WrapsProducerError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewKafkaPublisher(&recordingProducer{err: boom}, "servicelink-api")

	if err := p.Publish(context.Background(), sampleEvent()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped producer error, got %v", err)
	}
}

func TestLogPublisher(t *testing.T) {
	if err := NewLogPublisher(logger.Discard()).Publish(context.Background(), sampleEvent()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
