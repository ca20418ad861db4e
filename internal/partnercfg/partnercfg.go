// Package partnercfg resolves per-partner step-up settings through an
// explicit, constructor-injected cache. Nothing here is process-global so
// tests can build isolated instances.
package partnercfg

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"paygate/kit/errs"
)

// Settings is what a partner is allowed and required to do during payment
// authentication.
type Settings struct {
	Partner              string `json:"partner"`
	StepUpEnabled        bool   `json:"stepUpEnabled"`
	RiskChallengeEnabled bool   `json:"riskChallengeEnabled"`
	DefaultLanguage      string `json:"defaultLanguage"`
}

// SourceContract fetches the authoritative settings for a partner.
type SourceContract interface {
	Fetch(ctx context.Context, partner string) (Settings, error)
}

type entry struct {
	settings  Settings
	fetchedAt time.Time
}

// Cache is a TTL cache over a SourceContract. Reads are snapshots and never
// block a refresh in flight; concurrent refreshes for the same partner are
// collapsed to one source call.
type Cache struct {
	source       SourceContract
	ttl          time.Duration
	staleOnError bool
	now          func() time.Time

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]entry
}

func NewCache(source SourceContract, ttl time.Duration, staleOnError bool) *Cache {
	return &Cache{
		source:       source,
		ttl:          ttl,
		staleOnError: staleOnError,
		now:          time.Now,
		entries:      make(map[string]entry),
	}
}

// Get returns the cached settings for partner, refreshing from the source
// when the entry is missing or older than the TTL. With stale-on-error
// enabled an expired entry outlives a failing source.
func (c *Cache) Get(ctx context.Context, partner string) (Settings, error) {
	key := strings.ToLower(partner)

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(cached.fetchedAt) < c.ttl {
		return cached.settings, nil
	}

	settings, err := c.refresh(ctx, key, partner)
	if err != nil {
		if ok && c.staleOnError {
			return cached.settings, nil
		}
		return Settings{}, err
	}
	return settings, nil
}

// GetFresh bypasses the cached entry and always consults the source. The
// fetched value still lands in the cache.
func (c *Cache) GetFresh(ctx context.Context, partner string) (Settings, error) {
	return c.refresh(ctx, strings.ToLower(partner), partner)
}

func (c *Cache) refresh(ctx context.Context, key, partner string) (Settings, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		settings, err := c.source.Fetch(ctx, partner)
		if err != nil {
			return Settings{}, fmt.Errorf("partnercfg: fetch %s: %w", partner, err)
		}
		c.mu.Lock()
		c.entries[key] = entry{settings: settings, fetchedAt: c.now()}
		c.mu.Unlock()
		return settings, nil
	})
	if err != nil {
		return Settings{}, err
	}
	return v.(Settings), nil
}

// StaticSource serves settings from a fixed table, falling back to a default
// when the partner is unlisted. Useful for tests and single-tenant deploys.
type StaticSource struct {
	ByPartner map[string]Settings
	Default   *Settings
}

func (s StaticSource) Fetch(_ context.Context, partner string) (Settings, error) {
	if settings, ok := s.ByPartner[strings.ToLower(partner)]; ok {
		return settings, nil
	}
	if s.Default != nil {
		settings := *s.Default
		settings.Partner = partner
		return settings, nil
	}
	return Settings{}, fmt.Errorf("partnercfg: unknown partner %s: %w", partner, errs.ErrNotFound)
}
