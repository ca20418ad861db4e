package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"paygate/internal/sessionstore"
	"paygate/kit/errs"
)

type CheckFunc func(ctx context.Context) error

// Service runs named dependency checks and caches the combined result for a
// TTL so health probes cannot hammer the backends.
type Service struct {
	mu sync.Mutex

	checks       map[string]CheckFunc
	ttl          time.Duration
	checkTimeout time.Duration

	nextCheckAt time.Time
	lastResult  Result
}

type Result struct {
	At     time.Time
	OK     bool
	Checks map[string]string
}

func NewService(ttl time.Duration, checks map[string]CheckFunc) *Service {
	return &Service{
		ttl:          ttl,
		checks:       checks,
		checkTimeout: 2 * time.Second,
		lastResult:   Result{Checks: map[string]string{}},
	}
}

func (s *Service) Check(ctx context.Context) Result {
	s.mu.Lock()
	if time.Now().Before(s.nextCheckAt) {
		res := s.lastResult
		s.mu.Unlock()
		return res
	}
	s.mu.Unlock()

	res := Result{At: time.Now().UTC(), OK: true, Checks: make(map[string]string, len(s.checks))}
	for name, fn := range s.checks {
		if fn == nil {
			res.OK = false
			res.Checks[name] = "invalid check"
			continue
		}
		checkCtx, cancel := context.WithTimeout(ctx, s.checkTimeout)
		err := fn(checkCtx)
		cancel()
		if err != nil {
			res.OK = false
			res.Checks[name] = err.Error()
			continue
		}
		res.Checks[name] = "ok"
	}

	s.mu.Lock()
	s.lastResult = res
	s.nextCheckAt = time.Now().Add(s.ttl)
	s.mu.Unlock()

	return res
}

// StoreCheck probes the session store with a get for a key that cannot
// exist. Not-found is a healthy answer; anything else is not.
func StoreCheck(store sessionstore.Contract) CheckFunc {
	return func(ctx context.Context) error {
		_, err := store.Get(ctx, "health-probe")
		if err == nil || errs.IsNotFound(err) {
			return nil
		}
		return err
	}
}

// EndpointCheck reports whether the backend at url answers HTTP at all. Any
// status code counts; only transport failures are unhealthy.
func EndpointCheck(client *http.Client, url string) CheckFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("health: build probe request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		return nil
	}
}
