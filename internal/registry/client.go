package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wau-ai/wau-cli/internal/agentcard"
	"github.com/wau-ai/wau-cli/internal/client"
	"github.com/wau-ai/wau-cli/internal/telemetry"
)

// Signer produces a publisher attestation over a request body.
type Signer interface {
	Scheme() string
	Publisher() string
	Sign(body []byte) (string, error)
}

// Client calls the registry API.
type Client struct {
	http    *client.Client
	baseURL string
	signer  Signer
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithSigner attaches publisher attestation headers to registrations.
func WithSigner(s Signer) Option {
	return func(c *Client) {
		c.signer = s
	}
}

// WithMetrics records request counts and latency.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a registry client for baseURL. A nil httpClient uses the
// defaults of client.New.
func New(baseURL string, httpClient *client.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = client.New()
	}
	c := &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discover asks the registry to fetch and parse the agent card at
// agentURL.
func (c *Client) Discover(ctx context.Context, agentURL string) (agentcard.Form, error) {
	body, err := json.Marshal(map[string]string{"url": agentURL})
	if err != nil {
		return agentcard.Form{}, fmt.Errorf("failed to encode request: %w", err)
	}

	raw, err := c.call(ctx, "discover", http.MethodPost, "/discover", body, nil)
	if err != nil {
		return agentcard.Form{}, err
	}

	form, err := agentcard.Decode(raw)
	if err != nil {
		return agentcard.Form{}, fmt.Errorf("failed to decode agent card: %w", err)
	}
	return form, nil
}

// Register submits a registration and returns the audit task id. A 409
// response yields an *APIError wrapping ErrDuplicate.
func (c *Client) Register(ctx context.Context, reg agentcard.Registration) (string, error) {
	body, err := json.Marshal(reg)
	if err != nil {
		return "", fmt.Errorf("failed to encode registration: %w", err)
	}

	headers := map[string]string{}
	if c.signer != nil {
		sig, err := c.signer.Sign(body)
		if err != nil {
			return "", fmt.Errorf("failed to sign registration: %w", err)
		}
		headers[HeaderPublisher] = c.signer.Publisher()
		headers[HeaderSignature] = sig
		headers[HeaderSignatureScheme] = c.signer.Scheme()
	}

	raw, err := c.call(ctx, "register", http.MethodPost, "/register", body, headers)
	if err != nil {
		return "", err
	}

	var resp struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to parse registration response: %w", err)
	}
	if strings.TrimSpace(resp.TaskID) == "" {
		return "", ErrMissingTaskID
	}
	return resp.TaskID, nil
}

// Status fetches the current state of an audit task. A body without a
// status field is returned as is; it is not terminal.
func (c *Client) Status(ctx context.Context, taskID string) (TaskStatus, error) {
	raw, err := c.call(ctx, "status", http.MethodGet, "/status/"+url.PathEscape(taskID), nil, nil)
	if err != nil {
		return TaskStatus{}, err
	}

	var status TaskStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return TaskStatus{}, fmt.Errorf("failed to parse task status: %w", err)
	}
	return status, nil
}

// call performs one request and returns the body of a 2xx response.
// Non-2xx responses become *APIError.
func (c *Client) call(ctx context.Context, op, method, path string, body []byte, headers map[string]string) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, "registry."+op, attribute.String("registry.url", c.baseURL))
	defer span.End()

	if headers == nil {
		headers = map[string]string{}
	}
	headers["Accept"] = "application/json"
	if body != nil {
		headers["Content-Type"] = "application/json"
	}

	result, err := c.http.TimedRequest(ctx, method, c.baseURL+path, headers, body)
	if err != nil {
		c.metrics.ObserveRequest(op, "transport_error", result.Latency)
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}
	resp := result.Response
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.metrics.ObserveRequest(op, "transport_error", result.Latency)
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(raw),
			RetryAfter: client.ParseRetryAfter(resp),
		}
		outcome := "client_error"
		switch {
		case op == "register" && resp.StatusCode == http.StatusConflict:
			apiErr.Err = ErrDuplicate
			outcome = "duplicate"
		case resp.StatusCode >= 500:
			outcome = "server_error"
		}
		c.metrics.ObserveRequest(op, outcome, result.Latency)
		telemetry.RecordError(span, apiErr)
		c.logger.Debug("registry error response", "op", op, "status", resp.StatusCode, "detail", apiErr.Detail)
		return nil, apiErr
	}

	c.metrics.ObserveRequest(op, "ok", result.Latency)
	return raw, nil
}

// parseDetail extracts a human-readable message from an error body. It
// understands {"detail": "..."} and the list form
// {"detail": [{"msg": "..."}]}.
func parseDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// IsDuplicate reports whether err is a duplicate registration.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
