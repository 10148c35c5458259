package sleeper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/draftkit/sleeper-mcp/logger"
	"github.com/draftkit/sleeper-mcp/resilience"
)

const (
	DefaultBaseURL = "https://api.sleeper.app/v1"

	// Sleeper asks clients to stay under 1000 calls/minute; we stay far
	// below that with a 60/minute window plus request spacing.
	requestsPerMinute  = 60
	defaultMinInterval = time.Second

	maxRetryAfter = 60 * time.Second
)

var userAgent = "sleeper-mcp/" + Version

// Version is stamped at build time.
var Version = "dev"

// Error is the typed failure for upstream requests.
type Error struct {
	URL        string
	Status     int
	Body       string
	Err        error
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("sleeper: request to %s failed (status %d)", e.URL, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// RetryDelayHint surfaces a 429 Retry-After to the retry loop.
func (e *Error) RetryDelayHint() (time.Duration, bool) {
	if e.RetryAfter > 0 {
		return e.RetryAfter, true
	}
	return 0, false
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsRateLimited reports whether err is an upstream 429.
func IsRateLimited(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests
}

// retryable classifies errors for the retry loop: transport failures,
// timeouts, 408/429 and 5xx retry; other HTTP statuses do not.
func retryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusRequestTimeout:
			return true
		case apiErr.Status == http.StatusTooManyRequests:
			return true
		case apiErr.Status >= 500:
			return true
		case apiErr.Status > 0:
			return false
		}
		// no status: transport-level failure
		return resilience.DefaultRetryableErrors(errors.Unwrap(apiErr))
	}
	return resilience.DefaultRetryableErrors(err)
}

// rateLimiter enforces minimum spacing between requests and a rolling
// per-minute budget, mirroring the upstream's published limits.
type rateLimiter struct {
	minInterval time.Duration
	lastRequest time.Time
	count       int
	windowEnd   time.Time
}

// reserve returns how long the caller must wait before issuing the next
// request, and records the reservation. Called under the client's lock via
// waitTurn; the sleep itself happens outside any lock.
func (r *rateLimiter) reserve(now time.Time) time.Duration {
	if now.After(r.windowEnd) {
		r.count = 0
		r.windowEnd = now.Add(time.Minute)
	}

	var wait time.Duration
	if r.count >= requestsPerMinute {
		wait = r.windowEnd.Sub(now)
		r.count = 0
		r.windowEnd = now.Add(wait + time.Minute)
	}

	if r.minInterval > 0 && !r.lastRequest.IsZero() {
		if gap := r.minInterval - now.Add(wait).Sub(r.lastRequest); gap > 0 {
			wait += gap
		}
	}

	r.lastRequest = now.Add(wait)
	r.count++
	return wait
}

// Client is a GET-only HTTP client for the Sleeper API with rate limiting and
// retry/backoff. All methods are safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
	retry      resilience.RetryConfig

	mu      sync.Mutex
	limiter rateLimiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different API root, used by tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithRetryConfig replaces the retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) ClientOption {
	return func(c *Client) { c.retry = cfg }
}

// WithMinRequestInterval changes the spacing between requests. Zero disables
// spacing (tests).
func WithMinRequestInterval(d time.Duration) ClientOption {
	return func(c *Client) { c.limiter.minInterval = d }
}

// NewClient returns a Client for the public Sleeper API.
func NewClient(opts ...ClientOption) *Client {
	retry := resilience.DefaultRetryConfig()
	retry.RetryableErrors = retryable
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.NewConsoleLogger(logger.LevelNone),
		retry:      retry,
		limiter:    rateLimiter{minInterval: defaultMinInterval},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) waitTurn(ctx context.Context) error {
	c.mu.Lock()
	wait := c.limiter.reserve(time.Now())
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	c.log.Debug("rate limit: waiting %s before next request", wait)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// get performs a GET with rate limiting and retry, decoding the JSON response
// into out. A JSON null leaves out untouched.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return resilience.Retry(ctx, c.retry, func() error {
		return c.doOnce(ctx, u, out)
	})
}

func (c *Client) doOnce(ctx context.Context, u string, out any) error {
	if err := c.waitTurn(ctx); err != nil {
		return err
	}

	requestID := uuid.NewString()
	log := c.log.With(map[string]interface{}{"request_id": requestID})
	log.Trace("GET %s", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &Error{URL: u, Err: errors.Wrap(err, "creating request")}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &Error{URL: u, Err: errors.Wrap(err, "sending request")}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{URL: u, Status: resp.StatusCode, Err: errors.Wrap(err, "reading response body")}
	}
	log.Trace("response status %d (%d bytes)", resp.StatusCode, len(body))

	switch {
	case resp.StatusCode == http.StatusOK:
		if out == nil || len(body) == 0 || string(body) == "null" {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return &Error{URL: u, Status: resp.StatusCode, Body: preview(body), Err: errors.Wrap(err, "decoding response")}
		}
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := maxRetryAfter
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		if retryAfter > maxRetryAfter {
			retryAfter = maxRetryAfter
		}
		return &Error{
			URL:        u,
			Status:     resp.StatusCode,
			Body:       preview(body),
			Err:        errors.New("rate limit exceeded"),
			RetryAfter: retryAfter,
		}
	default:
		return &Error{
			URL:    u,
			Status: resp.StatusCode,
			Body:   preview(body),
			Err:    errors.Newf("request failed with status %d", resp.StatusCode),
		}
	}
}

// preview truncates a response body for error reporting.
func preview(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
