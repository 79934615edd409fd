package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestStore[V any]() (*Store[V], *time.Time) {
	store := NewStore[V]()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	current := &now
	store.now = func() time.Time { return *current }
	return store, current
}

func TestStore_GetReturnsFreshEntry(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore[string]()
	ctx := context.Background()

	store.Set(ctx, "soccer/epl", "cached", time.Minute)

	value, ok := store.Get(ctx, "soccer/epl")
	if !ok || value != "cached" {
		t.Fatalf("expected hit, got ok=%v value=%q", ok, value)
	}
	if store.Hits() != 1 || store.Misses() != 0 {
		t.Fatalf("unexpected counters: hits=%d misses=%d", store.Hits(), store.Misses())
	}
}

func TestStore_ExpiredEntryIsMissAndEvicted(t *testing.T) {
	t.Parallel()

	store, now := newTestStore[string]()
	ctx := context.Background()

	store.Set(ctx, "k", "v", time.Minute)
	*now = now.Add(time.Minute)

	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expected miss at exact expiry")
	}
	if store.Misses() != 1 {
		t.Fatalf("expected one miss, got=%d", store.Misses())
	}

	// The entry was evicted, not just hidden.
	store.mu.RLock()
	_, still := store.entries["k"]
	store.mu.RUnlock()
	if still {
		t.Fatalf("expected expired entry to be evicted")
	}
}

func TestStore_SetIgnoresNonPositiveTTL(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore[int]()
	ctx := context.Background()

	store.Set(ctx, "k", 42, 0)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expected zero-ttl set to be dropped")
	}
}

func TestGetOrLoad_SharesOneLoadAcrossCallers(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore[int]()
	ctx := context.Background()

	var loads int
	var loadMu sync.Mutex
	release := make(chan struct{})
	loader := func(context.Context) (int, error) {
		loadMu.Lock()
		loads++
		loadMu.Unlock()
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := store.GetOrLoad(ctx, "k", time.Minute, loader)
			if err != nil {
				t.Errorf("get or load: %v", err)
				return
			}
			results[i] = value
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	loadMu.Lock()
	defer loadMu.Unlock()
	if loads != 1 {
		t.Fatalf("expected one shared load, got=%d", loads)
	}
	for i, value := range results {
		if value != 7 {
			t.Fatalf("caller %d: unexpected value %d", i, value)
		}
	}
}

func TestGetOrLoad_LoaderErrorIsNotCached(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore[int]()
	ctx := context.Background()

	boom := errors.New("loader exploded")
	if _, err := store.GetOrLoad(ctx, "k", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got=%v", err)
	}

	value, err := store.GetOrLoad(ctx, "k", time.Minute, func(context.Context) (int, error) {
		return 11, nil
	})
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if value != 11 {
		t.Fatalf("expected fresh load after error, got=%d", value)
	}
}
