// Package registry is the client for the WAU registry API: agent card
// discovery, registration, and audit task status.
package registry

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Task status values reported by GET /status/{id}.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusSuccess    = "success"
	StatusFailed     = "failed"
	StatusError      = "error"
)

// Attestation headers sent with a signed registration.
const (
	HeaderPublisher       = "X-WAU-Publisher"
	HeaderSignature       = "X-WAU-Signature"
	HeaderSignatureScheme = "X-WAU-Signature-Scheme"
)

// maxBodySize caps response bodies read from the registry.
const maxBodySize = 1 << 20

var (
	// ErrDuplicate is wrapped by the 409 response to a registration.
	ErrDuplicate = errors.New("agent already registered")

	// ErrMissingTaskID is returned when a registration is accepted without a
	// task id.
	ErrMissingTaskID = errors.New("registry returned no task id")
)

// TaskStatus is one snapshot of an audit task.
type TaskStatus struct {
	Status     string   `json:"status"`
	Progress   string   `json:"progress,omitempty"`
	TrustScore *float64 `json:"trust_score,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// IsSuccess reports whether the task finished successfully.
func (s TaskStatus) IsSuccess() bool {
	return s.Status == StatusSuccess
}

// IsFailure reports whether the task finished unsuccessfully.
func (s TaskStatus) IsFailure() bool {
	return s.Status == StatusFailed || s.Status == StatusError
}

// IsTerminal reports whether no further status changes are expected.
// Unknown status strings are not terminal.
func (s TaskStatus) IsTerminal() bool {
	return s.IsSuccess() || s.IsFailure()
}

// APIError is a non-2xx response from the registry.
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Detail, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the same call may succeed.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
