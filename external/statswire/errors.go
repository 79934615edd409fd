package statswire

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/scorelinehq/scorefeed/internal/platform/retry"
)

// errMalformed marks undecodable provider payloads. Never retried.
var errMalformed = crerr.New("statswire malformed response")

// APIError is a non-2xx provider response. RetryAfter carries the delay the
// provider advertised via Retry-After or X-RateLimit-Reset, when present.
type APIError struct {
	StatusCode int
	RetryAfter time.Duration
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("statswire status=%d", e.StatusCode)
	}
	return fmt.Sprintf("statswire status=%d body=%s", e.StatusCode, e.Body)
}

// RetryAfterHint satisfies the retry executor's delay-hint lookup.
func (e *APIError) RetryAfterHint() (time.Duration, bool) {
	if e.RetryAfter > 0 {
		return e.RetryAfter, true
	}
	return 0, false
}

// Classify maps client errors onto retry kinds: 429 and quota signals are
// rate-limited, 5xx and transport failures transient, everything else fatal.
func Classify(err error) retry.Kind {
	if err == nil {
		return retry.KindFatal
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return retry.KindRateLimited
		case apiErr.StatusCode >= 500:
			return retry.KindTransient
		default:
			return retry.KindFatal
		}
	}

	if stderrors.Is(err, errMalformed) {
		return retry.KindFatal
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return retry.KindTransient
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return retry.KindTransient
	}

	// url.Error and friends wrap transport-level failures.
	return retry.KindTransient
}

// parseRetryAfter reads the provider's advertised backoff from response
// headers. Retry-After wins; X-RateLimit-Reset (epoch seconds) is a fallback.
func parseRetryAfter(headers http.Header, now time.Time) time.Duration {
	if v := strings.TrimSpace(headers.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		if at, err := http.ParseTime(v); err == nil {
			if d := at.Sub(now); d > 0 {
				return d
			}
		}
	}

	if v := strings.TrimSpace(headers.Get("X-RateLimit-Reset")); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			if d := time.Unix(epoch, 0).Sub(now); d > 0 {
				return d
			}
		}
	}

	return 0
}
