package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wau-ai/wau-cli/internal/a2a"
	"github.com/wau-ai/wau-cli/internal/client"
	"github.com/wau-ai/wau-cli/internal/output"
	"github.com/wau-ai/wau-cli/internal/workflow"
)

var (
	discoverDirect   bool
	discoverCardPath string
)

var discoverCmd = &cobra.Command{
	Use:   "discover <url>",
	Short: "Fetch an agent card and show the registration form",
	Long: `Discover an agent and show the registration form built from its
Agent Card. Fields the card omits get their defaults (price 0, currency USD,
SLA 99%, domain General).

By default the registry fetches the card. Use --direct to fetch it from the
agent's well-known paths yourself:
  /.well-known/agent-card.json
  /.well-known/agent.json
  /.well-known/agents.json

Examples:
  wau discover https://agent.example.com
  wau discover https://agent.example.com --json
  wau discover https://agent.example.com --direct --verbose
  wau discover https://agent.example.com --card-path /meta/card.json`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().BoolVar(&discoverDirect, "direct", false, "Fetch the card from the agent instead of the registry")
	discoverCmd.Flags().StringVar(&discoverCardPath, "card-path", "", "Custom card path on the agent host (implies --direct)")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	result := discoverAgent(cmd.Context(), args[0], discoverDirect, discoverCardPath)

	w := cmd.OutOrStdout()
	if GetJSONOutput() {
		if err := output.PrintJSON(w, result); err != nil {
			return err
		}
	} else {
		output.PrintDiscoverResult(w, result, GetVerbose())
	}

	if result.ExitCode != ExitOK {
		return reported(result.ExitCode, "discovery failed")
	}
	return nil
}

// discoverAgent runs one discovery through the registry, or against the
// agent itself when direct is set or a card path is given.
func discoverAgent(ctx context.Context, agentURL string, direct bool, cardPath string) *output.DiscoverResult {
	agentURL = strings.TrimSpace(agentURL)
	if agentURL == "" {
		return &output.DiscoverResult{
			Source:   workflow.SourceRegistry,
			ExitCode: ExitValidation,
			Error:    workflow.ErrURLRequired.Error(),
		}
	}

	if direct || cardPath != "" {
		return discoverDirectly(ctx, agentURL, cardPath)
	}

	form, err := newRegistry().Discover(ctx, agentURL)
	if err != nil {
		logger.Debug("discovery failed", "url", agentURL, "error", err)
		return &output.DiscoverResult{
			URL:      agentURL,
			Source:   workflow.SourceRegistry,
			ExitCode: classify(err),
			Error:    err.Error(),
		}
	}
	return &output.DiscoverResult{URL: agentURL, Source: workflow.SourceRegistry, Form: &form}
}

func discoverDirectly(ctx context.Context, agentURL, cardPath string) *output.DiscoverResult {
	hc := a2a.NewHTTPClient(cfg.API.Timeout,
		client.WithUserAgent(userAgent()),
		client.WithLogger(logger),
	)
	res := a2a.Discover(ctx, hc, agentURL, cardPath)

	result := &output.DiscoverResult{
		URL:      agentURL,
		Source:   workflow.SourceAgent,
		Path:     res.DiscoveryPath,
		Form:     res.Form,
		ExitCode: res.ExitCode,
		Error:    res.Error,
	}
	if !res.Found {
		result.Form = nil
		if result.ExitCode == ExitOK {
			result.ExitCode = ExitFailure
		}
		if result.Error == "" {
			result.Error = "no agent card found"
		}
	}
	return result
}
