package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/scorelinehq/scorefeed/internal/platform/logging"
)

// Kind classifies an upstream failure for retry purposes.
type Kind string

const (
	// KindTransient covers timeouts, connection resets and 5xx responses.
	KindTransient Kind = "transient"
	// KindRateLimited covers 429s and provider quota signals.
	KindRateLimited Kind = "rate_limited"
	// KindFatal covers other 4xx responses and malformed payloads. No retry.
	KindFatal Kind = "fatal"
	// KindTimeout marks an operation cut short by its context deadline,
	// usually the cycle budget running out.
	KindTimeout Kind = "timeout"
)

// Classifier maps an operation error to a Kind.
type Classifier func(err error) Kind

// RetryAfterCarrier is implemented by errors that carry a provider-advertised
// delay (e.g. a Retry-After header). The executor prefers it over backoff.
type RetryAfterCarrier interface {
	RetryAfterHint() (time.Duration, bool)
}

// FetchError is the terminal error of an exhausted or fatal operation.
type FetchError struct {
	Kind     Kind
	Attempts int
	Cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed (%s) after %d attempt(s): %v", e.Kind, e.Attempts, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// AsFetchError unwraps err into a *FetchError when possible.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts: 4,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
	}
}

func NormalizeConfig(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaults.BaseDelay
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = defaults.MaxDelay
	}
	return cfg
}

// Executor retries a single operation with exponential backoff and jitter.
// It never consults the rate limiter: callers compose Limiter.Acquire at the
// head of the operation closure so every attempt is admitted individually.
type Executor struct {
	cfg      Config
	classify Classifier
	logger   *logging.Logger
	sleep    func(ctx context.Context, d time.Duration) error
	jitter   func(max time.Duration) time.Duration
}

func NewExecutor(cfg Config, classify Classifier, logger *logging.Logger) *Executor {
	if classify == nil {
		classify = func(error) Kind { return KindTransient }
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Executor{
		cfg:      NormalizeConfig(cfg),
		classify: classify,
		logger:   logger,
		sleep:    sleepContext,
		jitter: func(max time.Duration) time.Duration {
			if max <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(int64(max)))
		},
	}
}

type execState int

const (
	stateAttempting execState = iota
	stateWaiting
	stateSucceeded
	stateFailed
)

// Do runs op until it succeeds, fails fatally, or attempts are exhausted.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var (
		state    = stateAttempting
		attempt  = 0
		lastErr  error
		lastKind Kind
	)

	for {
		switch state {
		case stateAttempting:
			attempt++
			err := op(ctx)
			if err == nil {
				state = stateSucceeded
				continue
			}
			lastErr = err

			if ctx.Err() != nil {
				lastKind = kindForContextErr(ctx.Err())
				state = stateFailed
				continue
			}

			lastKind = e.classify(err)
			if lastKind == KindFatal || attempt >= e.cfg.MaxAttempts {
				state = stateFailed
				continue
			}
			state = stateWaiting

		case stateWaiting:
			delay := e.delayFor(attempt, lastErr, lastKind)
			e.logger.DebugContext(ctx, "retrying upstream call",
				"attempt", attempt,
				"max_attempts", e.cfg.MaxAttempts,
				"kind", string(lastKind),
				"delay", delay,
				"error", lastErr,
			)
			if err := e.sleep(ctx, delay); err != nil {
				lastErr = err
				lastKind = kindForContextErr(err)
				state = stateFailed
				continue
			}
			state = stateAttempting

		case stateSucceeded:
			if attempt > 1 {
				e.logger.InfoContext(ctx, "upstream call recovered", "attempt", attempt)
			}
			return nil

		case stateFailed:
			return &FetchError{Kind: lastKind, Attempts: attempt, Cause: lastErr}
		}
	}
}

// delayFor prefers the provider-advertised delay for rate-limit errors and
// otherwise applies min(maxDelay, base*2^attempt) plus jitter in [0, base).
func (e *Executor) delayFor(attempt int, err error, kind Kind) time.Duration {
	if kind == KindRateLimited {
		var carrier RetryAfterCarrier
		if errors.As(err, &carrier) {
			if hint, ok := carrier.RetryAfterHint(); ok && hint > 0 {
				return hint
			}
		}
	}

	backoff := e.cfg.BaseDelay << uint(attempt-1)
	if backoff > e.cfg.MaxDelay || backoff <= 0 {
		backoff = e.cfg.MaxDelay
	}
	return backoff + e.jitter(e.cfg.BaseDelay)
}

func kindForContextErr(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindTransient
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
