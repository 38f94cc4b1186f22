// Package httpds downloads source exports over HTTP. The client retries
// transient failures (transport errors, 429 and 5xx) with exponential
// backoff and honors context cancellation between attempts.
package httpds

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

// Config configures the client. Zero values get defaults: Timeout 30s,
// InitialBackoff 200ms, MaxBackoff 5s. MaxRetries 0 means a single attempt.
type Config struct {
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// InsecureSkipVerify disables TLS certificate checks.
	InsecureSkipVerify bool

	// Header is sent with every request.
	Header http.Header

	// Transport replaces the default transport, mostly for tests.
	Transport http.RoundTripper
}

// Client wraps an http.Client with retry and backoff.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	header         http.Header

	// wait blocks between attempts; tests replace it to run instantly.
	wait func(ctx context.Context, d time.Duration) error
}

// NewClient constructs a Client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in per source
			},
		}
	}

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout, Transport: transport},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		header:         cfg.Header.Clone(),
		wait:           waitContext,
	}
}

// Get fetches url, retrying transient failures. On success the caller owns
// the response body. Any non-retryable status is returned as a response,
// not an error; callers decide what a 404 means.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if url == "" {
		return nil, fmt.Errorf("httpds: url must not be empty")
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, backoffDuration(c.initialBackoff, attempt-1, c.maxBackoff)); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("httpds: build request: %w", err)
		}
		for k, vs := range c.header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}
		resp.Body.Close()
		lastErr = fmt.Errorf("httpds: retryable status %d from %s", resp.StatusCode, url)
	}
	return nil, lastErr
}

// isRetryableStatus treats 429 and every 5xx as transient.
func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// backoffDuration returns initial * 2^attempt, clamped to max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		return max
	}
	d := initial << attempt
	if d > max || d <= 0 {
		return max
	}
	return d
}

func waitContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
