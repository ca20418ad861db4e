package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"paygate/internal/session"
	"paygate/kit/errs"
)

// Contract is the durable store orchestration state is serialized in and out
// of, so that a full browser redirect does not lose state. Writes replace the
// whole record; last write wins. There is no optimistic concurrency guard at
// this layer (known gap, the store backend owns any concurrency control).
type Contract interface {
	Get(ctx context.Context, id string) (*session.PaymentSession, error)
	Put(ctx context.Context, id string, s *session.PaymentSession) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-process store with TTL expiry. Records pass through JSON on
// every Put/Get so the persist/resume boundary behaves the same as a real
// backend.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Memory{ttl: ttl, entries: make(map[string]memoryEntry)}
}

func (m *Memory) Get(ctx context.Context, id string) (*session.PaymentSession, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, fmt.Errorf("session %s: %w", id, errs.ErrNotFound)
	}
	var s session.PaymentSession
	if err := json.Unmarshal(e.data, &s); err != nil {
		return nil, errs.Integration("sessionstore", "unmarshal session "+id)
	}
	return &s, nil
}

func (m *Memory) Put(ctx context.Context, id string, s *session.PaymentSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errs.Integration("sessionstore", "marshal session "+id)
	}
	m.mu.Lock()
	m.entries[id] = memoryEntry{data: data, expiresAt: time.Now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}
