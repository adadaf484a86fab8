// Package client provides the HTTP client used for registry and agent card
// requests.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/wau-ai/wau-cli/internal/telemetry"
)

// RequestIDHeader carries a fresh identifier on every request.
const RequestIDHeader = "X-Request-ID"

// ErrUnavailable is returned when the circuit breaker rejects a request.
var ErrUnavailable = errors.New("service unavailable")

// errServerStatus marks 5xx responses as breaker failures.
var errServerStatus = errors.New("server error status")

// Client wraps http.Client with default headers, request ids, optional
// rate limiting and an optional circuit breaker.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	logger     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHeader adds a custom header to all requests.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return WithHeader("User-Agent", ua)
}

// WithRedirectLimit stops following redirects after limit hops.
func WithRedirectLimit(limit int) Option {
	return func(c *Client) {
		c.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= limit {
				return fmt.Errorf("stopped after %d redirects", limit)
			}
			return nil
		}
	}
}

// WithRateLimit throttles requests to perSecond with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithCircuitBreaker opens the circuit after maxFailures consecutive
// transport errors or 5xx responses, and probes again after timeout.
// maxFailures of 0 disables the breaker.
func WithCircuitBreaker(name string, maxFailures uint32, timeout time.Duration) Option {
	return func(c *Client) {
		if maxFailures == 0 {
			c.breaker = nil
			return
		}
		c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn("circuit breaker state change",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			},
		})
	}
}

// WithLogger sets the logger used for breaker events and request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a new Client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get performs a GET request to the given URL.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.Request(ctx, http.MethodGet, url, nil, nil)
}

// Request performs an HTTP request with the given method, URL, headers, and body.
func (c *Client) Request(ctx context.Context, method, url string, headers map[string]string, body []byte) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.Do(req)
}

// Do performs the HTTP request with default headers applied. It waits for
// the rate limiter and goes through the circuit breaker when configured.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	for k, v := range c.headers {
		if req.Header.Get(k) == "" { // Don't override if already set
			req.Header.Set(k, v)
		}
	}
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}

	ctx, span := telemetry.StartSpan(req.Context(), "http "+req.Method,
		attribute.String("http.method", req.Method),
		attribute.String("http.url", req.URL.String()),
		attribute.String("http.request_id", req.Header.Get(RequestIDHeader)),
	)
	defer span.End()
	req = req.WithContext(ctx)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := c.send(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	c.logger.Debug("http request",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"request_id", req.Header.Get(RequestIDHeader),
	)
	return resp, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errServerStatus
		}
		return resp, nil
	})
	switch {
	case errors.Is(err, errServerStatus):
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, err
}

// RequestResult contains timing and response information.
type RequestResult struct {
	Response  *http.Response
	Latency   time.Duration
	LatencyMs int64
}

// TimedRequest performs a timed HTTP request.
func (c *Client) TimedRequest(ctx context.Context, method, url string, headers map[string]string, body []byte) (*RequestResult, error) {
	start := time.Now()
	resp, err := c.Request(ctx, method, url, headers, body)
	latency := time.Since(start)

	if err != nil {
		return &RequestResult{Latency: latency, LatencyMs: latency.Milliseconds()}, err
	}

	return &RequestResult{
		Response:  resp,
		Latency:   latency,
		LatencyMs: latency.Milliseconds(),
	}, nil
}

// ParseRetryAfter extracts the Retry-After header value as a duration.
// Returns 0 if the header is not present or invalid.
func ParseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if retryAfter == "" {
		return 0
	}

	// Seconds
	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	// HTTP-date (RFC 7231)
	if t, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}
