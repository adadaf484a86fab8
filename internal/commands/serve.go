package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wau-ai/wau-cli/internal/mockserver"
)

var (
	serveAddr     string
	serveProgress []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local mock registry API",
	Long: `Run an in-memory registry that implements the discover, register and
status endpoints. Discovery fetches real agent cards from the agents'
well-known paths. Audit tasks move through pending and the progress stages
to success with a deterministic trust score.

Endpoints:
  GET  /healthz
  POST /discover        {"url": "..."}
  POST /register        registration record
  GET  /status/{id}
  GET  /metrics         Prometheus metrics

Examples:
  wau serve
  wau serve --addr 127.0.0.1:9000
  wau --api-url http://127.0.0.1:9000 register https://agent.example.com`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", mockserver.DefaultAddr, "Listen address")
	serveCmd.Flags().StringSliceVar(&serveProgress, "progress", mockserver.DefaultProgress, "Progress stages reported while processing")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	srv := mockserver.New(mockserver.Config{
		Addr:     serveAddr,
		Progress: serveProgress,
		Metrics:  metrics,
		Logger:   logger,
	})

	fmt.Fprintf(cmd.ErrOrStderr(), "Mock registry listening on http://%s (Ctrl+C to stop)\n", srv.Addr())
	if err := srv.Start(cmd.Context()); err != nil {
		return &ExitError{Code: ExitNetwork, Err: err}
	}
	return nil
}
