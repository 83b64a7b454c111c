package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTimeout bounds ctx by timeout, keeping an earlier parent deadline. A
// transaction SessionContext is rewrapped so the bounded context still
// carries its session and the write stays inside the transaction.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if sc, ok := ctx.(mongo.SessionContext); ok {
		bounded, cancel := withTimeout(sc, timeout)
		return mongo.NewSessionContext(bounded, sc), cancel
	}
	return withTimeout(ctx, timeout)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}

	return context.WithTimeout(ctx, timeout)
}
