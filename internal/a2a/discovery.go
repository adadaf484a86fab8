// Package a2a fetches agent cards straight from an agent's well-known
// paths, without going through the registry.
package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wau-ai/wau-cli/internal/agentcard"
	"github.com/wau-ai/wau-cli/internal/client"
)

// Exit codes reported in Result.ExitCode.
const (
	ExitNetwork     = 3
	ExitInvalidCard = 4
)

// DiscoveryPaths lists agent card locations in priority order.
var DiscoveryPaths = []string{
	"/.well-known/agent-card.json",
	"/.well-known/agent.json",
	"/.well-known/agents.json",
}

const (
	maxBodySize    = 1 << 20
	maxRedirects   = 3
	DefaultTimeout = 10 * time.Second
)

var errMissingName = errors.New("invalid agent card: missing required field 'name'")

// NewHTTPClient returns a client suitable for card fetches: bounded
// redirects and the given timeout.
func NewHTTPClient(timeout time.Duration, opts ...client.Option) *client.Client {
	opts = append([]client.Option{
		client.WithTimeout(timeout),
		client.WithRedirectLimit(maxRedirects),
		client.WithHeader("Accept", "application/json"),
	}, opts...)
	return client.New(opts...)
}

// Discover tries each well-known path on the agent's host and stops at the
// first valid card. A non-empty customPath replaces the default list. A
// nil hc uses NewHTTPClient(DefaultTimeout).
func Discover(ctx context.Context, hc *client.Client, rawURL, customPath string) *Result {
	result := &Result{
		URL:        rawURL,
		TriedPaths: []PathAttempt{},
	}

	baseURL, err := ExtractBaseURL(rawURL)
	if err != nil {
		result.Error = err.Error()
		result.ExitCode = ExitInvalidCard
		return result
	}
	result.BaseURL = baseURL

	if hc == nil {
		hc = NewHTTPClient(DefaultTimeout)
	}

	for _, path := range buildPaths(customPath) {
		raw, form, status, fetchErr := fetchCard(ctx, hc, baseURL+path)

		attempt := PathAttempt{Path: path, Status: status}
		if fetchErr != nil {
			attempt.Error = fetchErr.Error()
		}
		result.TriedPaths = append(result.TriedPaths, attempt)

		if form != nil {
			result.Found = true
			result.DiscoveryPath = path
			result.Card = raw
			result.Form = form
			return result
		}

		if exitCode, errMsg := evaluateAttempt(status, fetchErr, customPath); exitCode > 0 {
			result.Error = errMsg
			result.ExitCode = exitCode
			return result
		}

		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			result.Error = "agent card requires authentication"
		}
	}

	if allNetworkErrors(result.TriedPaths) {
		result.ExitCode = ExitNetwork
		if result.Error == "" && len(result.TriedPaths) > 0 {
			result.Error = result.TriedPaths[0].Error
		}
	}
	return result
}

func buildPaths(customPath string) []string {
	if customPath == "" {
		return DiscoveryPaths
	}
	if !strings.HasPrefix(customPath, "/") {
		customPath = "/" + customPath
	}
	return []string{customPath}
}

// evaluateAttempt decides whether an attempt ends discovery early.
func evaluateAttempt(status int, err error, customPath string) (exitCode int, errMsg string) {
	if status == 0 && err != nil && customPath != "" {
		return ExitNetwork, err.Error()
	}
	if status == http.StatusOK && err != nil {
		return ExitInvalidCard, err.Error()
	}
	return 0, ""
}

func allNetworkErrors(attempts []PathAttempt) bool {
	if len(attempts) == 0 {
		return false
	}
	for _, attempt := range attempts {
		if attempt.Status != 0 {
			return false
		}
	}
	return true
}

// ExtractBaseURL reduces a URL to scheme://host[:port]. A missing scheme
// defaults to https.
func ExtractBaseURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid URL: missing host")
	}
	return fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host), nil
}

// fetchCard GETs one candidate URL. A 404 or auth response is reported
// through status with a nil error.
func fetchCard(ctx context.Context, hc *client.Client, cardURL string) (json.RawMessage, *agentcard.Form, int, error) {
	resp, err := hc.Get(ctx, cardURL)
	if err != nil {
		return nil, nil, 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
		return nil, nil, resp.StatusCode, nil
	default:
		return nil, nil, resp.StatusCode, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if !json.Valid(body) {
		return nil, nil, resp.StatusCode, fmt.Errorf("invalid JSON")
	}

	form, err := agentcard.Decode(body)
	if err != nil {
		return nil, nil, resp.StatusCode, err
	}
	if strings.TrimSpace(form.Name) == "" {
		return nil, nil, resp.StatusCode, errMissingName
	}
	return json.RawMessage(body), &form, resp.StatusCode, nil
}
