package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/wau-ai/wau-cli/internal/a2a"
	"github.com/wau-ai/wau-cli/internal/agentcard"
	"github.com/wau-ai/wau-cli/internal/client"
	"github.com/wau-ai/wau-cli/internal/registry"
	"github.com/wau-ai/wau-cli/internal/workflow"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitValidation  = 2
	ExitNetwork     = a2a.ExitNetwork
	ExitInvalidCard = a2a.ExitInvalidCard
	ExitDuplicate   = 6
	ExitDeadline    = 7
)

// ExitError carries the exit code of a failed command. Silent errors have
// already been rendered and are not printed again.
type ExitError struct {
	Code   int
	Err    error
	Silent bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// reported wraps a failure whose result was already printed.
func reported(code int, msg string) error {
	return &ExitError{Code: code, Err: errors.New(msg), Silent: true}
}

// ExitCode maps err to a process exit code. Errors without an explicit
// code are classified.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return classify(err)
}

func isSilent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Silent
}

// classify maps workflow and registry errors to exit codes.
func classify(err error) int {
	var (
		apiErr  *registry.APIError
		invalid *agentcard.InvalidCardError
		urlErr  *url.Error
		netErr  net.Error
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, workflow.ErrURLRequired),
		errors.Is(err, agentcard.ErrRequiredFields),
		errors.Is(err, agentcard.ErrUnknownField):
		return ExitValidation
	case registry.IsDuplicate(err):
		return ExitDuplicate
	case errors.Is(err, workflow.ErrPollDeadline):
		return ExitDeadline
	case errors.As(err, &invalid):
		return ExitInvalidCard
	case errors.As(err, &apiErr):
		switch apiErr.StatusCode {
		case http.StatusBadRequest:
			return ExitValidation
		case http.StatusUnprocessableEntity:
			if apiErr.Op == "discover" {
				return ExitInvalidCard
			}
			return ExitValidation
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return ExitNetwork
		}
		return ExitFailure
	case errors.Is(err, client.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &urlErr),
		errors.As(err, &netErr):
		return ExitNetwork
	}
	return ExitFailure
}
