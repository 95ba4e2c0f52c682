// Authenticated HTTP client for the Spotify Web API
//
// Endpoint shapes based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spr/internal/shared"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	apiTimeout  = 10 * time.Second
	apiMaxConns = 5

	defaultRateLimit = 10
	defaultBurst     = 5
)

// RateLimitError reports provider backpressure and carries the Retry-After
// hint so callers can surface it instead of retrying blindly.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by provider, retry after %s", e.RetryAfter)
	}
	return "rate limited by provider"
}

func (e *RateLimitError) Unwrap() error { return shared.ErrRateLimited }

// ClientConfig configures a [Client].
type ClientConfig struct {
	// Tokens supplies bearer tokens. Required.
	Tokens TokenSource

	// BaseURL overrides the Web API base, for tests.
	BaseURL string

	// Timeout bounds each outbound call. Defaults to 10s.
	Timeout time.Duration

	// RateLimit and Burst shape outbound traffic so one misbehaving caller
	// cannot draw provider backpressure for everyone. Default 10 req/s, 5.
	RateLimit float64
	Burst     int

	Logger *log.Logger
}

// Client issues authenticated requests against the Spotify Web API.
//
// Each call obtains a token from the [TokenSource], and a provider 401
// triggers exactly one forced renewal and retry. A second 401 surfaces as
// [shared.ErrNotAuthenticated] rather than looping against a dead grant.
type Client struct {
	http    *resty.Client
	tokens  TokenSource
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewClient creates an authenticated Web API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("%w: token source is required", shared.ErrInvalidConfig)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = spotifyBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = apiTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Logger == nil {
		cfg.Logger = shared.NewLogger(nil)
	}

	httpClient := resty.NewWithClient(&http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxConnsPerHost:     apiMaxConns,
			MaxIdleConnsPerHost: apiMaxConns,
		},
	}).SetBaseURL(cfg.BaseURL)

	return &Client{
		http:    httpClient,
		tokens:  cfg.Tokens,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		logger:  cfg.Logger,
	}, nil
}

// Do issues one authenticated request and maps provider failures into the
// shared error taxonomy. A nil result discards the response body; the
// returned status lets callers distinguish empty-state responses (204).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, result any) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	token, err := c.tokens.EnsureValid(ctx)
	if err != nil {
		return 0, err
	}

	resp, err := c.send(ctx, method, path, query, body, result, token)
	if err != nil {
		return 0, err
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		c.logger.Debug("token rejected, forcing renewal", "path", path)

		token, err = c.tokens.ForceRenew(ctx)
		if err != nil {
			return 0, err
		}

		resp, err = c.send(ctx, method, path, query, body, result, token)
		if err != nil {
			return 0, err
		}
		if resp.StatusCode() == http.StatusUnauthorized {
			return resp.StatusCode(), fmt.Errorf("%w: provider rejected a freshly renewed token", shared.ErrNotAuthenticated)
		}
	}

	return c.check(resp, method, path)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, result any, token string) (*resty.Response, error) {
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token)

	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, path, err)
	}
	return resp, nil
}

// check maps non-success statuses to the error taxonomy. Device-unavailable
// semantics only exist on player endpoints; elsewhere 403/404 are plain API
// failures.
func (c *Client) check(resp *resty.Response, method, path string) (int, error) {
	code := resp.StatusCode()

	switch {
	case resp.IsSuccess():
		return code, nil
	case code == http.StatusTooManyRequests:
		return code, &RateLimitError{RetryAfter: retryAfter(resp)}
	case (code == http.StatusForbidden || code == http.StatusNotFound) && strings.HasPrefix(path, "/me/player"):
		return code, fmt.Errorf("%w: %s %s returned status %d", shared.ErrNoActiveDevice, method, path, code)
	default:
		return code, fmt.Errorf("%w: %s %s returned status %d", shared.ErrAPIRequest, method, path, code)
	}
}

// retryAfter parses the provider's Retry-After hint, zero when absent.
func retryAfter(resp *resty.Response) time.Duration {
	s := resp.Header().Get("Retry-After")
	if s == "" {
		return 0
	}

	secs, err := strconv.Atoi(s)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
