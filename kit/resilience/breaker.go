package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"paygate/kit/errs"
)

var ErrCircuitOpen = errors.New("resilience: circuit open")

type BreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
	IsFailure        func(error) bool
}

// Breaker is a closed/open/half-open circuit breaker around backend calls.
// Only transient failures trip it; rejections and protocol errors pass through
// without affecting the circuit.
type Breaker struct {
	cfg BreakerConfig

	mu           sync.Mutex
	state        int
	failures     int
	successes    int
	openedAt     time.Time
	halfInFlight bool
}

const (
	cbClosed = iota
	cbOpen
	cbHalfOpen
)

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 2 * time.Second
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool {
			return errs.Transient(err) || errors.Is(err, context.DeadlineExceeded)
		}
	}
	return &Breaker{cfg: cfg, state: cbClosed}
}

func (b *Breaker) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if err := b.beforeCall(); err != nil {
		return err
	}
	err := op(ctx)
	b.afterCall(err)
	return err
}

func (b *Breaker) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case cbClosed:
		return nil
	case cbOpen:
		if time.Since(b.openedAt) >= b.cfg.OpenTimeout {
			b.state = cbHalfOpen
			b.successes = 0
			b.halfInFlight = false
		} else {
			return ErrCircuitOpen
		}
		fallthrough
	case cbHalfOpen:
		if b.halfInFlight {
			return ErrCircuitOpen
		}
		b.halfInFlight = true
		return nil
	default:
		return ErrCircuitOpen
	}
}

func (b *Breaker) afterCall(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == cbHalfOpen {
		b.halfInFlight = false
	}

	if err == nil {
		switch b.state {
		case cbClosed:
			b.failures = 0
		case cbHalfOpen:
			b.successes++
			if b.successes >= b.cfg.SuccessThreshold {
				b.state = cbClosed
				b.failures = 0
				b.successes = 0
			}
		}
		return
	}

	if !b.cfg.IsFailure(err) {
		return
	}

	switch b.state {
	case cbClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.state = cbOpen
			b.openedAt = time.Now().UTC()
			b.successes = 0
			b.halfInFlight = false
		}
	case cbHalfOpen:
		b.state = cbOpen
		b.openedAt = time.Now().UTC()
		b.failures = b.cfg.FailureThreshold
		b.successes = 0
		b.halfInFlight = false
	}
}
