// Package commands implements the CLI commands using Cobra.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wau-ai/wau-cli/internal/client"
	"github.com/wau-ai/wau-cli/internal/config"
	"github.com/wau-ai/wau-cli/internal/i18n"
	"github.com/wau-ai/wau-cli/internal/output"
	"github.com/wau-ai/wau-cli/internal/registry"
	"github.com/wau-ai/wau-cli/internal/telemetry"
	"github.com/wau-ai/wau-cli/internal/workflow"
)

// Version information (set at build time via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Global flags
var (
	verbose      bool
	jsonOutput   bool
	configPath   string
	apiURL       string
	language     string
	logLevel     string
	logFormat    string
	traceEnabled bool
	metricsFile  string
)

// Set up by the root command before any subcommand runs.
var (
	cfg            = config.Default()
	logger         = telemetry.Discard()
	metrics        *telemetry.Metrics
	shutdownTracer func(context.Context) error
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "wau",
	Short: "CLI for registering AI agents with the WAU trust registry",
	Long: `wau registers AI agents with the WAU registry and follows their
security audit.

An agent is discovered from its URL (the registry fetches its Agent Card),
the resulting form is reviewed and edited, then submitted. The registry
answers with an audit task that is polled until it reports a trust score
or a failure.

Commands:
  discover        Fetch an agent card and show the registration form
  register        Discover, submit and follow a registration
  status          Query an audit task
  batch-discover  Discover many agents from a file
  wizard          Interactive registration in the terminal
  serve           Run a local mock registry API

Examples:
  # Preview what the registry sees
  wau discover https://agent.example.com

  # Register, overriding the price
  wau register https://agent.example.com --set price=0.05 --set currency=USDC

  # Follow an existing task
  wau status 01J9Z3K6Q8R0T2V4X6Y8Z0A2B4 --watch`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command and exits with the command's exit code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	finish()

	if err != nil {
		if !isSilent(err) && !GetJSONOutput() {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(ExitCode(err))
	}
}

func init() {
	// Global flags available to all commands
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Show detailed output")
	flags.BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	flags.StringVar(&configPath, "config", "", "Config file (default $"+config.EnvConfig+" or the user config dir)")
	flags.StringVar(&apiURL, "api-url", "", "Registry API base URL")
	flags.StringVar(&language, "lang", "", "Message language (en, zh)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "Log format (text, json)")
	flags.BoolVar(&traceEnabled, "trace", false, "Write OpenTelemetry spans to stderr")
	flags.StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
}

// GetVerbose returns the verbose flag value.
func GetVerbose() bool {
	return verbose
}

// GetJSONOutput returns the json output flag value.
func GetJSONOutput() bool {
	return jsonOutput
}

// setup loads the configuration and installs logging, tracing and metrics.
// Precedence is defaults, then the config file, then the environment, then
// flags.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return &ExitError{Code: ExitValidation, Err: err}
	}
	c, err := config.Load(config.ResolvePath(configPath))
	if err != nil {
		return &ExitError{Code: ExitValidation, Err: err}
	}
	applyFlags(c)
	if err := c.Validate(); err != nil {
		return &ExitError{Code: ExitValidation, Err: err}
	}

	i18n.SetLanguage(c.UI.Language)

	l, err := telemetry.SetupLogger(c.Log.Level, c.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return &ExitError{Code: ExitValidation, Err: err}
	}
	shutdown, err := telemetry.InitTracer(traceEnabled, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg, logger, metrics, shutdownTracer = c, l, telemetry.NewMetrics(), shutdown
	cmd.SetContext(telemetry.WithLogger(cmd.Context(), l))
	logger.Debug("configuration loaded", "api_url", c.API.URL, "lang", c.UI.Language)
	return nil
}

func applyFlags(c *config.Config) {
	if apiURL != "" {
		c.API.URL = apiURL
	}
	if language != "" {
		c.UI.Language = language
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}
}

// finish flushes spans and writes the metrics file.
func finish() {
	if shutdownTracer != nil {
		if err := shutdownTracer(context.Background()); err != nil {
			output.PrintWarning(fmt.Sprintf("failed to flush traces: %v", err))
		}
		shutdownTracer = nil
	}
	if err := metrics.WriteFile(metricsFile); err != nil {
		output.PrintWarning(err.Error())
	}
}

func userAgent() string {
	return "wau/" + Version
}

// newHTTPClient builds the registry transport from the loaded config.
func newHTTPClient() *client.Client {
	return client.New(
		client.WithTimeout(cfg.API.Timeout),
		client.WithUserAgent(userAgent()),
		client.WithHeader("Accept", "application/json"),
		client.WithRateLimit(cfg.API.RatePerSecond, cfg.API.Burst),
		client.WithCircuitBreaker("registry", cfg.Breaker.MaxFailures, cfg.Breaker.Timeout),
		client.WithLogger(logger),
	)
}

func newRegistry(opts ...registry.Option) *registry.Client {
	opts = append([]registry.Option{
		registry.WithMetrics(metrics),
		registry.WithLogger(logger),
	}, opts...)
	return registry.New(cfg.API.URL, newHTTPClient(), opts...)
}

// newPoller uses the configured delays. A zero deadline polls until the
// task finishes.
func newPoller(fetcher workflow.StatusFetcher, deadline time.Duration) *workflow.Poller {
	return workflow.NewPoller(fetcher, workflow.PollConfig{
		Interval:      cfg.Poll.Interval,
		RetryInterval: cfg.Poll.RetryInterval,
		Deadline:      deadline,
	}, workflow.WithPollMetrics(metrics), workflow.WithPollLogger(logger))
}

func newController(reg *registry.Client, deadline time.Duration, log *slog.Logger) *workflow.Controller {
	return workflow.NewController(reg,
		workflow.WithPoller(newPoller(reg, deadline)),
		workflow.WithMetrics(metrics),
		workflow.WithLogger(log),
	)
}
