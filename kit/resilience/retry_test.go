package resilience

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"paygate/kit/errs"
)

func TestRetryPolicy_RetriesTransientOnly(t *testing.T) {
	ctx := context.Background()

	var tests = []struct {
		name          string
		err           error
		expectedCalls int
	}{
		{name: "unavailable retried", err: fmt.Errorf("call: %w", errs.ErrUnavailable), expectedCalls: 3},
		{name: "timeout retried", err: fmt.Errorf("call: %w", errs.ErrTimeout), expectedCalls: 3},
		{name: "rejection not retried", err: &errs.BackendRejection{Service: "risk", Code: "BadRequest"}, expectedCalls: 1},
		{name: "protocol break not retried", err: errs.MissingField("payerauth", "acsUrl"), expectedCalls: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			p := RetryPolicy{Attempts: 3, Delay: time.Millisecond}
			calls := 0
			err := p.Do(ctx, func(ctx context.Context) error {
				calls++
				return tt.err
			})
			require.Error(t, err)
			require.Equal(t, tt.expectedCalls, calls)
		})
	}
}

func TestRetryPolicy_StopsOnSuccess(t *testing.T) {
	p := RetryPolicy{Attempts: 3, Delay: time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return fmt.Errorf("call: %w", errs.ErrUnavailable)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestRetryPolicy_HonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := RetryPolicy{Attempts: 3, Delay: time.Minute}
	calls := 0
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		return fmt.Errorf("call: %w", errs.ErrUnavailable)
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestBreaker_OpensAfterThresholdAndRecovers(t *testing.T) {
	ctx := context.Background()
	b := NewBreaker(BreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: 10 * time.Millisecond})

	transient := func(ctx context.Context) error { return fmt.Errorf("call: %w", errs.ErrUnavailable) }
	ok := func(ctx context.Context) error { return nil }

	require.Error(t, b.Do(ctx, transient))
	require.Error(t, b.Do(ctx, transient))
	require.ErrorIs(t, b.Do(ctx, ok), ErrCircuitOpen)

	time.Sleep(15 * time.Millisecond)
	require.NoError(t, b.Do(ctx, ok))
	require.NoError(t, b.Do(ctx, ok))
}

func TestBreaker_RejectionsDoNotTrip(t *testing.T) {
	ctx := context.Background()
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute})

	rejected := func(ctx context.Context) error {
		return &errs.BackendRejection{Service: "payerauth", Code: "InvalidInput"}
	}
	require.Error(t, b.Do(ctx, rejected))
	require.NoError(t, b.Do(ctx, func(ctx context.Context) error { return nil }))
}
