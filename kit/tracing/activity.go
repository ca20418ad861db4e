package tracing

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Activity is the per-request correlation state. It is threaded explicitly via
// context.Context; nothing here is ambient or goroutine-local.
type Activity struct {
	CorrelationID string
	vector        atomic.Int64
}

func NewActivity() *Activity {
	return &Activity{CorrelationID: uuid.NewString()}
}

func NewActivityFrom(correlationID string) *Activity {
	if correlationID == "" {
		return NewActivity()
	}
	return &Activity{CorrelationID: correlationID}
}

// Increment advances the correlation vector and returns the extended value,
// one step per outbound call.
func (a *Activity) Increment() string {
	n := a.vector.Add(1)
	return fmt.Sprintf("%s.%d", a.CorrelationID, n)
}

// TrackingID returns a fresh idempotency/tracking id. One per outbound call,
// never reused.
func TrackingID() string {
	return uuid.NewString()
}

type ctxKey struct{}

func With(ctx context.Context, a *Activity) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// From returns the Activity carried by ctx, or a fresh one so that callers can
// always rely on having correlation state.
func From(ctx context.Context) *Activity {
	if a, ok := ctx.Value(ctxKey{}).(*Activity); ok && a != nil {
		return a
	}
	return NewActivity()
}
