package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"servicelink/pkg/kafka"
	"servicelink/pkg/logger"
)

func TestMiddlewarePassesResultThrough(t *testing.T) {
	boom := errors.New("boom")
	msg := kafka.Message{Key: "b1", Value: []byte(`{}`), Headers: map[string]string{}}

	tests := []struct {
		name string
		mw   func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error
	}{
		{"logging producer", LoggingProducerMiddleware(logger.Discard())},
		{"logging consumer", LoggingConsumerMiddleware(logger.Discard())},
		{"metrics producer", MetricsProducerMiddleware()},
		{"metrics consumer", MetricsConsumerMiddleware()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			next := func(ctx context.Context, m kafka.Message) error {
				calls++
				return boom
			}
			if err := tt.mw(context.Background(), msg, next); !errors.Is(err, boom) {
				t.Errorf("expected wrapped handler error, got %v", err)
			}
			if calls != 1 {
				t.Errorf("next called %d times", calls)
			}
		})
	}
}
