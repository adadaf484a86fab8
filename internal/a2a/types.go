package a2a

import (
	"encoding/json"

	"github.com/wau-ai/wau-cli/internal/agentcard"
)

// Result is the outcome of fetching an agent card from the agent itself.
type Result struct {
	URL           string          `json:"url"`
	BaseURL       string          `json:"baseUrl"`
	Found         bool            `json:"found"`
	DiscoveryPath string          `json:"discoveryPath,omitempty"`
	Card          json.RawMessage `json:"card,omitempty"` // raw document as served
	Form          *agentcard.Form `json:"form,omitempty"` // Card after defaults
	TriedPaths    []PathAttempt   `json:"triedPaths,omitempty"`
	ExitCode      int             `json:"exitCode"`
	Error         string          `json:"error,omitempty"`
}

// PathAttempt records one well-known path that was tried.
type PathAttempt struct {
	Path   string `json:"path"`
	Status int    `json:"status"` // 0 on network error
	Error  string `json:"error,omitempty"`
}
