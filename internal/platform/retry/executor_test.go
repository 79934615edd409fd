package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scorelinehq/scorefeed/internal/platform/logging"
)

func newTestExecutor(cfg Config, classify Classifier) (*Executor, *[]time.Duration) {
	executor := NewExecutor(cfg, classify, logging.NewNop())

	sleeps := &[]time.Duration{}
	executor.sleep = func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	executor.jitter = func(time.Duration) time.Duration { return 0 }

	return executor, sleeps
}

type hintedError struct {
	hint time.Duration
}

func (e *hintedError) Error() string { return "rate limited" }

func (e *hintedError) RetryAfterHint() (time.Duration, bool) { return e.hint, true }

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	executor, sleeps := newTestExecutor(Config{MaxAttempts: 4, BaseDelay: 100 * time.Millisecond, MaxDelay: 10 * time.Second}, nil)

	calls := 0
	err := executor.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got=%v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got=%d", calls)
	}
	if len(*sleeps) != 2 {
		t.Fatalf("expected 2 waits, got=%d", len(*sleeps))
	}
}

func TestDo_BackoffDoublesAndCaps(t *testing.T) {
	t.Parallel()

	executor, sleeps := newTestExecutor(Config{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 250 * time.Millisecond}, nil)

	err := executor.Do(context.Background(), func(context.Context) error {
		return errors.New("still broken")
	})
	if err == nil {
		t.Fatalf("expected terminal failure")
	}

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		250 * time.Millisecond,
		250 * time.Millisecond,
	}
	if len(*sleeps) != len(want) {
		t.Fatalf("expected %d waits, got=%d", len(want), len(*sleeps))
	}
	for i, delay := range want {
		if (*sleeps)[i] != delay {
			t.Fatalf("wait %d: expected %s, got=%s", i, delay, (*sleeps)[i])
		}
	}
}

func TestDo_ExhaustionReportsAttemptsAndKind(t *testing.T) {
	t.Parallel()

	executor, _ := newTestExecutor(Config{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Second}, nil)

	cause := errors.New("boom")
	err := executor.Do(context.Background(), func(context.Context) error { return cause })

	fetchErr, ok := AsFetchError(err)
	if !ok {
		t.Fatalf("expected *FetchError, got=%T", err)
	}
	if fetchErr.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got=%d", fetchErr.Attempts)
	}
	if fetchErr.Kind != KindTransient {
		t.Fatalf("expected transient kind, got=%s", fetchErr.Kind)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped")
	}
}

func TestDo_FatalErrorsNeverRetry(t *testing.T) {
	t.Parallel()

	classify := func(error) Kind { return KindFatal }
	executor, sleeps := newTestExecutor(Config{MaxAttempts: 4, BaseDelay: time.Millisecond, MaxDelay: time.Second}, classify)

	calls := 0
	err := executor.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("404 not found")
	})

	fetchErr, ok := AsFetchError(err)
	if !ok || fetchErr.Kind != KindFatal {
		t.Fatalf("expected fatal fetch error, got=%v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got=%d", calls)
	}
	if len(*sleeps) != 0 {
		t.Fatalf("expected no waits, got=%d", len(*sleeps))
	}
}

func TestDo_RateLimitedPrefersRetryAfterHint(t *testing.T) {
	t.Parallel()

	classify := func(error) Kind { return KindRateLimited }
	executor, sleeps := newTestExecutor(Config{MaxAttempts: 2, BaseDelay: 100 * time.Millisecond, MaxDelay: 10 * time.Second}, classify)

	err := executor.Do(context.Background(), func(context.Context) error {
		return &hintedError{hint: 7 * time.Second}
	})
	if err == nil {
		t.Fatalf("expected terminal failure")
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 7*time.Second {
		t.Fatalf("expected a single 7s wait from the hint, got=%+v", *sleeps)
	}
}

func TestDo_ContextCancellationStopsRetrying(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(Config{MaxAttempts: 10, BaseDelay: 10 * time.Millisecond, MaxDelay: time.Second}, nil, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := executor.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("broken")
	})

	fetchErr, ok := AsFetchError(err)
	if !ok {
		t.Fatalf("expected *FetchError, got=%T", err)
	}
	if fetchErr.Attempts != 1 {
		t.Fatalf("expected one attempt before cancellation, got=%d", fetchErr.Attempts)
	}
	if calls != 1 {
		t.Fatalf("expected one call, got=%d", calls)
	}
}

func TestDo_DeadlineExceededReportsTimeoutKind(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(Config{MaxAttempts: 10, BaseDelay: 10 * time.Millisecond, MaxDelay: time.Second}, nil, logging.NewNop())

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := executor.Do(ctx, func(ctx context.Context) error {
		return ctx.Err()
	})

	fetchErr, ok := AsFetchError(err)
	if !ok {
		t.Fatalf("expected *FetchError, got=%T", err)
	}
	if fetchErr.Kind != KindTimeout {
		t.Fatalf("expected timeout kind, got=%s", fetchErr.Kind)
	}
	if fetchErr.Attempts != 1 {
		t.Fatalf("expected one attempt, got=%d", fetchErr.Attempts)
	}
}

func TestNormalizeConfig_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg := NormalizeConfig(Config{})
	if cfg.MaxAttempts != 4 {
		t.Fatalf("unexpected default max attempts: %d", cfg.MaxAttempts)
	}
	if cfg.BaseDelay != 500*time.Millisecond {
		t.Fatalf("unexpected default base delay: %s", cfg.BaseDelay)
	}
	if cfg.MaxDelay != 30*time.Second {
		t.Fatalf("unexpected default max delay: %s", cfg.MaxDelay)
	}
}
