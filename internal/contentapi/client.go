// Package contentapi is a client for the RecipeSpark and WebCMS content API.
//
// Every endpoint answers with the shared envelope. The client rejects
// envelopes that report failure or carry data of the wrong shape, retries
// transient failures with exponential backoff, and rate limits per API section.
package contentapi

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/ratelimit"
	"github.com/recipespark/content-core/internal/validation"
)

const (
	DefaultBaseURL   = "https://webspark.markhazleton.com/api"
	DefaultWebsiteID = 2

	defaultRPS          = 5.0
	defaultBurst        = 5
	defaultTimeout      = 10 * time.Second
	defaultMaxRetries   = 2
	defaultRetryBackoff = 250 * time.Millisecond
	defaultUserAgent    = "recipespark-content-core/1.0"

	maxBodyBytes = 32 << 20
)

// Options configures a Client. Zero fields take defaults.
type Options struct {
	BaseURL      string
	WebsiteID    int
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	RPS          float64
	Burst        int
	UserAgent    string
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.WebsiteID == 0 {
		o.WebsiteID = DefaultWebsiteID
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = defaultRetryBackoff
	}
	if o.RPS == 0 {
		o.RPS = defaultRPS
	}
	if o.Burst <= 0 {
		o.Burst = defaultBurst
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	return o
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{MaxRetries: defaultMaxRetries}.withDefaults()
}

// Client is a rate-limited content API client.
type Client struct {
	http      *http.Client
	limiter   *ratelimit.KeyedRateLimiter
	validator *validation.Validator
	logger    *slog.Logger
	opts      Options
	sleep     func(ctx context.Context, d time.Duration) error
}

// New creates a content API client.
func New(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()
	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter:   ratelimit.New(opts.RPS, opts.Burst),
		validator: validation.New(),
		logger:    logger,
		opts:      opts,
		sleep:     sleepContext,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// WebsiteID returns the site the client reads.
func (c *Client) WebsiteID() int {
	return c.opts.WebsiteID
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.opts.BaseURL
}

// doRequest executes a GET with rate limiting and retries.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.opts.RetryBackoff << (attempt - 1)
			c.logger.Debug("content api retry",
				"path", path,
				"attempt", attempt,
				"backoff", backoff,
				"error", lastErr,
			)
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}

		body, err := c.doOnce(ctx, path, query)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx, section(path)); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.opts.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	c.logger.Debug("content api request", "path", path, "query", query.Encode())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}
}

// section picks the limiter key: the first path segment.
func section(path string) string {
	s := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// getEnvelope fetches path and decodes the envelope, rejecting failed or
// misshapen responses. check validates the payload when non-nil.
func getEnvelope[T any](
	ctx context.Context,
	c *Client,
	op, resource, path string,
	query url.Values,
	check func(*domain.Envelope[T]) error,
) (domain.Envelope[T], error) {
	var env domain.Envelope[T]

	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return env, wrapError(op, resource, err)
	}

	if err := json.Unmarshal(body, &env); err != nil {
		return domain.Envelope[T]{}, wrapError(op, resource, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err))
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "success=false"
		}
		return domain.Envelope[T]{}, wrapError(op, resource, fmt.Errorf("%w: %s", ErrMalformedEnvelope, msg))
	}
	if check != nil {
		if err := check(&env); err != nil {
			return domain.Envelope[T]{}, wrapError(op, resource, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err))
		}
	}
	return env, nil
}
