package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"time"
)

// Client wraps an HTTP client with the politeness rules every outbound
// request must follow: a randomized delay before the call, a fixed
// browser-like identity, and uniform classification of blocked, missing,
// and failed responses.
//
// Design decision: The delay lives in the transport rather than in the
// walker or downloader because it is non-negotiable. Putting it here
// means no caller can forget it, and it stays the single suspension
// point of the whole run.
type Client struct {
	// httpClient performs the actual requests.
	httpClient *http.Client

	// minDelay and maxDelay bound the pre-request pause. The pause is
	// sampled uniformly from [minDelay, maxDelay] before every request,
	// including retries across runs.
	minDelay time.Duration
	maxDelay time.Duration

	// userAgent is the identity header sent with every request.
	userAgent string

	// cookie is an optional collection-level cookie (age gates and the
	// like), sent verbatim when set.
	cookie string

	// headers are extra fixed headers from collection config.
	headers map[string]string

	// logger receives per-request debug records.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDelayWindow sets the politeness delay bounds.
func WithDelayWindow(minDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.minDelay = minDelay
		c.maxDelay = maxDelay
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithCookie sets a cookie sent with every request.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithLogger sets the logger for request records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests to
// inject httptest transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a polite transport with the given per-request timeout.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		minDelay:   2 * time.Second,
		maxDelay:   5 * time.Second,
		userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// RequestOption adjusts a single request.
type RequestOption func(*http.Request)

// WithReferer sets the Referer header for one request. Listing pages are
// fetched with the previous page as referer and payloads with their
// dataset listing, matching how a browser session would navigate.
func WithReferer(referer string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set("Referer", referer)
	}
}

// Get performs a polite GET of url. It always sleeps a random duration in
// the configured window first; cancelling ctx during the pause aborts the
// request without touching the network.
func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) Outcome {
	if err := c.pause(ctx); err != nil {
		return Outcome{Kind: KindNetworkError, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Outcome{Kind: KindNetworkError, Err: err}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome := classifyError(err)
		c.logger.Debug("request failed", "url", url, "kind", outcome.Kind.String(), "error", err)
		return outcome
	}

	c.logger.Debug("request completed", "url", url, "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusForbidden:
		drain(resp.Body)
		return Outcome{Kind: KindBlocked, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		drain(resp.Body)
		return Outcome{Kind: KindNotFound, StatusCode: resp.StatusCode}
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Outcome{Kind: KindOK, StatusCode: resp.StatusCode, Body: resp.Body}
	default:
		drain(resp.Body)
		return Outcome{
			Kind:       KindNetworkError,
			StatusCode: resp.StatusCode,
			Err:        errors.New("unexpected status " + resp.Status),
		}
	}
}

// pause sleeps a uniformly random duration in [minDelay, maxDelay],
// returning early with ctx.Err() on cancellation.
func (c *Client) pause(ctx context.Context) error {
	d := c.minDelay
	if span := c.maxDelay - c.minDelay; span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	if d <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// classifyError maps a transport error to an outcome kind.
func classifyError(err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return Outcome{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Outcome{Kind: KindTimeout, Err: err}
	}
	return Outcome{Kind: KindNetworkError, Err: err}
}

// drain discards and closes a response body so the connection can be
// reused.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64*1024)) //nolint:errcheck // Best effort drain
	_ = body.Close()                                          //nolint:errcheck // Best effort close
}
