package statswire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/scorelinehq/scorefeed/internal/domain/game"
	"github.com/scorelinehq/scorefeed/internal/domain/league"
	"github.com/scorelinehq/scorefeed/internal/platform/logging"
	"github.com/scorelinehq/scorefeed/internal/platform/resilience"
	"github.com/scorelinehq/scorefeed/internal/platform/retry"
)

const (
	defaultBaseURL  = "https://api.statswire.io/v2"
	maxResponseSize = 6 << 20
)

var apiKeyParamRegex = regexp.MustCompile(`api_key=[^&\s"']+`)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is a thin, single-attempt StatsWire API client. It classifies
// failures for the retry executor but performs no retries of its own; callers
// own admission (rate limiter) and retry policy.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	now            func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		now:            time.Now,
	}
}

// ListLeagues fetches the provider's league directory for one sport.
func (c *Client) ListLeagues(ctx context.Context, sport string) ([]league.Descriptor, error) {
	sport = strings.ToLower(strings.TrimSpace(sport))
	if sport == "" {
		return nil, crerr.New("sport is required")
	}

	var envelope leaguesEnvelope
	path := fmt.Sprintf("/%s/leagues", url.PathEscape(sport))
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return nil, err
	}

	discoveredAt := c.now().UTC()
	out := make([]league.Descriptor, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		if desc, ok := mapLeagueItem(sport, item, discoveredAt); ok {
			out = append(out, desc)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].LeagueID < out[j].LeagueID })
	return out, nil
}

// ListGames fetches one league's games within [since, until). Zero bounds are
// omitted and the provider applies its own default horizon.
func (c *Client) ListGames(ctx context.Context, desc league.Descriptor, since, until time.Time) ([]game.Record, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	query := map[string]string{}
	if !since.IsZero() {
		query["since"] = since.UTC().Format(time.RFC3339)
	}
	if !until.IsZero() {
		query["until"] = until.UTC().Format(time.RFC3339)
	}

	var envelope gamesEnvelope
	path := fmt.Sprintf("/%s/leagues/%s/games", url.PathEscape(desc.Sport), url.PathEscape(desc.LeagueID))
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return nil, err
	}

	fetchedAt := c.now().UTC()
	out := make([]game.Record, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		var item gameItem
		if err := sonic.Unmarshal(raw, &item); err != nil {
			return nil, crerr.Wrapf(errMalformed, "decode game item: %v", err)
		}
		if record, ok := mapGameItem(desc, raw, item, fetchedAt); ok {
			out = append(out, record)
		}
	}

	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "statswire circuit breaker rejected request", "state", c.breaker.State())
			return crerr.Wrap(err, "statswire is temporarily unavailable")
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_key", c.token)

	fullURL := c.baseURL + path + "?" + values.Encode()

	flightKey := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(flightKey, func() (any, error) {
		raw, reqErr := c.executeOnce(ctx, fullURL)
		if c.circuitEnabled {
			// Only dependency-health failures count against the breaker;
			// fatal responses (4xx, malformed payloads) do not trip it.
			if reqErr != nil && Classify(reqErr) != retry.KindFatal {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return crerr.Newf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrapf(errMalformed, "decode provider payload: %v", err)
	}

	return nil
}

// executeOnce performs exactly one HTTP attempt.
func (c *Client) executeOnce(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Newf("send request: %s", redactToken(err.Error(), c.token))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, crerr.Wrap(err, "read response body")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header, c.now()),
		Body:       abbreviateBody(raw),
	}
	c.logger.WarnContext(ctx, "statswire request failed",
		"url", redactURL(fullURL),
		"status", resp.StatusCode,
		"retry_after", apiErr.RetryAfter,
	)
	return nil, apiErr
}

func redactURL(fullURL string) string {
	return apiKeyParamRegex.ReplaceAllString(fullURL, "api_key=REDACTED")
}

func redactToken(text, token string) string {
	if token == "" {
		return text
	}
	return strings.ReplaceAll(text, token, "REDACTED")
}

func abbreviateBody(raw []byte) string {
	const maxLen = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > maxLen {
		return body[:maxLen] + "..."
	}
	return body
}
