package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/scorelinehq/scorefeed/internal/platform/resilience"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is a process-local TTL cache. A read at or past an entry's expiry is
// a miss and evicts the entry. Hit/miss counters are cumulative.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	flight  resilience.SingleFlight
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

func NewStore[V any]() *Store[V] {
	return &Store[V]{
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	if key == "" {
		s.misses.Add(1)
		return zero, false
	}

	now := s.now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		s.misses.Add(1)
		return zero, false
	}
	if !e.expiresAt.After(now) {
		s.mu.Lock()
		if cur, still := s.entries[key]; still && !cur.expiresAt.After(now) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		s.misses.Add(1)
		return zero, false
	}

	s.hits.Add(1)
	return e.value, true
}

func (s *Store[V]) Has(ctx context.Context, key string) bool {
	_, ok := s.Get(ctx, key)
	return ok
}

func (s *Store[V]) Set(_ context.Context, key string, value V, ttl time.Duration) {
	if key == "" || ttl <= 0 {
		return
	}

	s.mu.Lock()
	s.entries[key] = entry[V]{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
	s.mu.Unlock()
}

func (s *Store[V]) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// GetOrLoad returns the cached value or runs loader once per key, storing the
// result with ttl. Concurrent callers for the same key share one load.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) (V, error)) (V, error) {
	var zero V
	if loader == nil {
		return zero, crerr.New("cache loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	out, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded, ttl)
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := out.(V)
	if !ok {
		return zero, crerr.Newf("unexpected cached value type %T", out)
	}
	return value, nil
}

func (s *Store[V]) Hits() int64 {
	return s.hits.Load()
}

func (s *Store[V]) Misses() int64 {
	return s.misses.Load()
}
