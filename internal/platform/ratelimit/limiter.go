package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter admits at most Calls events per trailing Window, tracked per key.
// Keys are independent: each holds its own admission queue behind its own lock,
// so pressure on one upstream quota never serializes callers of another.
type Limiter struct {
	calls  int
	window time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	windows map[string]*keyWindow

	requests atomic.Int64
	waited   atomic.Int64
}

type keyWindow struct {
	mu         sync.Mutex
	admissions []time.Time
}

type Config struct {
	Calls  int
	Window time.Duration
}

func DefaultConfig() Config {
	return Config{
		Calls:  30,
		Window: time.Minute,
	}
}

func New(cfg Config) *Limiter {
	if cfg.Calls < 1 {
		cfg.Calls = DefaultConfig().Calls
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}

	return &Limiter{
		calls:   cfg.Calls,
		window:  cfg.Window,
		now:     time.Now,
		windows: make(map[string]*keyWindow),
	}
}

// Acquire blocks until the key's trailing window has capacity or ctx ends.
// No admission is ever dropped: callers queue on the key until a slot frees.
func (l *Limiter) Acquire(ctx context.Context, key string) error {
	l.requests.Add(1)

	kw := l.keyWindow(key)
	waitedOnce := false
	for {
		ok, retryAfter := kw.tryAdmit(l.now(), l.calls, l.window)
		if ok {
			return nil
		}

		if !waitedOnce {
			waitedOnce = true
			l.waited.Add(1)
		}

		timer := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire admits immediately or reports how long until the window frees.
func (l *Limiter) TryAcquire(key string) (bool, time.Duration) {
	l.requests.Add(1)

	kw := l.keyWindow(key)
	ok, retryAfter := kw.tryAdmit(l.now(), l.calls, l.window)
	if !ok {
		l.waited.Add(1)
	}
	return ok, retryAfter
}

// TotalRequests reports cumulative Acquire/TryAcquire calls across all keys.
func (l *Limiter) TotalRequests() int64 {
	return l.requests.Load()
}

// TotalWaited reports how many calls found a full window and had to wait
// (or, for TryAcquire, were turned away).
func (l *Limiter) TotalWaited() int64 {
	return l.waited.Load()
}

func (l *Limiter) keyWindow(key string) *keyWindow {
	l.mu.RLock()
	kw, ok := l.windows[key]
	l.mu.RUnlock()
	if ok {
		return kw
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if kw, ok = l.windows[key]; ok {
		return kw
	}
	kw = &keyWindow{}
	l.windows[key] = kw
	return kw
}

func (w *keyWindow) tryAdmit(now time.Time, calls int, window time.Duration) (bool, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-window)
	kept := w.admissions[:0]
	for _, at := range w.admissions {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	w.admissions = kept

	if len(w.admissions) < calls {
		w.admissions = append(w.admissions, now)
		return true, 0
	}

	retryAfter := window - now.Sub(w.admissions[0])
	if retryAfter <= 0 {
		retryAfter = time.Millisecond
	}
	return false, retryAfter
}
