package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wau-ai/wau-cli/internal/output"
	"github.com/wau-ai/wau-cli/internal/registry"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Query an audit task",
	Long: `Show the status of an audit task created by a registration.

With --watch the task is polled until it finishes, using the configured
poll interval and deadline. Network errors while watching are retried.

Examples:
  wau status 01J9Z3K6Q8R0T2V4X6Y8Z0A2B4
  wau status 01J9Z3K6Q8R0T2V4X6Y8Z0A2B4 --watch
  wau status 01J9Z3K6Q8R0T2V4X6Y8Z0A2B4 --watch --json`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Poll until the task finishes")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	taskID := strings.TrimSpace(args[0])
	if taskID == "" {
		return &ExitError{Code: ExitValidation, Err: errors.New("task id is required")}
	}

	reg := newRegistry()
	result := &output.StatusResult{TaskID: taskID, Statuses: []registry.TaskStatus{}}

	var err error
	if statusWatch {
		if !GetJSONOutput() && output.IsTTY() {
			output.PrintInfo("Following task " + taskID + "...")
		}
		err = newPoller(reg, cfg.Poll.Deadline).Run(ctx, taskID, func(s registry.TaskStatus) {
			result.Statuses = append(result.Statuses, s)
		})
	} else {
		var s registry.TaskStatus
		if s, err = reg.Status(ctx, taskID); err == nil {
			result.Statuses = append(result.Statuses, s)
		}
	}

	switch latest := result.Latest(); {
	case err != nil:
		result.Error = err.Error()
		result.ExitCode = classify(err)
	case latest != nil && latest.IsFailure():
		result.Error = latest.Error
		if result.Error == "" {
			result.Error = "audit failed"
		}
		result.ExitCode = ExitFailure
	}

	w := cmd.OutOrStdout()
	if GetJSONOutput() {
		if err := output.PrintJSON(w, result); err != nil {
			return err
		}
	} else {
		output.PrintStatusResult(w, result, GetVerbose() || statusWatch)
	}

	if result.ExitCode != ExitOK {
		return reported(result.ExitCode, "status check failed")
	}
	return nil
}
