package resilience

import (
	"context"
	"time"

	"paygate/kit/errs"
)

// RetryPolicy retries an operation on transient failures only. 4xx and
// protocol-contract errors are never retried: they cannot succeed on replay.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	// ShouldRetry defaults to errs.Transient (5xx and timeouts).
	ShouldRetry func(error) bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: 500 * time.Millisecond}
}

func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	shouldRetry := p.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = errs.Transient
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 && p.Delay > 0 {
			t := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		if err = op(ctx); err == nil || !shouldRetry(err) {
			return err
		}
	}
	return err
}
