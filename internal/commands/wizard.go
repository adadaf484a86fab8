package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wau-ai/wau-cli/internal/output"
	"github.com/wau-ai/wau-cli/internal/telemetry"
	"github.com/wau-ai/wau-cli/internal/tui"
)

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Register an agent interactively",
	Long: `Open the interactive registration wizard.

Steps:
  1. Discover   enter the agent URL
  2. Confirm    review and edit the form, Ctrl+S submits
  3. Register   follow the audit until it finishes

Messages follow --lang (or ui.language in the config file).

Examples:
  wau wizard
  wau wizard --lang zh`,
	Args: cobra.NoArgs,
	RunE: runWizard,
}

func init() {
	rootCmd.AddCommand(wizardCmd)
}

func runWizard(cmd *cobra.Command, args []string) error {
	if !output.IsTTY() || !output.IsStdinTTY() {
		return &ExitError{Code: ExitValidation, Err: errors.New("the wizard needs an interactive terminal; use 'wau register' instead")}
	}

	// The alt screen owns the terminal while the wizard runs.
	quiet, err := telemetry.SetupLogger(cfg.Log.Level, cfg.Log.Format, io.Discard)
	if err != nil {
		return err
	}
	logger = quiet

	ctrl := newController(newRegistry(), cfg.Poll.Deadline, quiet)
	defer ctrl.Close()

	final, err := tui.Run(cmd.Context(), ctrl)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	if GetJSONOutput() {
		return output.PrintJSON(cmd.OutOrStdout(), final)
	}
	if final.TaskID != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Last task: %s\n", final.TaskID)
	}
	return nil
}
