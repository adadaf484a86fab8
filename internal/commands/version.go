package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wau-ai/wau-cli/internal/output"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version, build information, and runtime details.`,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if GetJSONOutput() {
		return output.PrintJSON(w, map[string]string{
			"version":   Version,
			"commit":    Commit,
			"buildDate": BuildDate,
			"go":        runtime.Version(),
			"os":        runtime.GOOS,
			"arch":      runtime.GOARCH,
			"apiUrl":    cfg.API.URL,
		})
	}

	// Compact format: wau 0.1.0 (e0b2c4f)
	commitShort := truncate(Commit, 7)
	if commitShort != "none" {
		fmt.Fprintf(w, "wau %s (%s)\n", Version, commitShort)
	} else {
		fmt.Fprintf(w, "wau %s\n", Version)
	}

	if BuildDate != "unknown" {
		fmt.Fprintf(w, "  Built:    %s\n", truncate(BuildDate, 10))
	}

	goVersion := strings.TrimPrefix(runtime.Version(), "go")
	fmt.Fprintf(w, "  Go:       %s\n", goVersion)
	fmt.Fprintf(w, "  Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if GetVerbose() {
		fmt.Fprintf(w, "  API:      %s\n", cfg.API.URL)
	}
	return nil
}

// truncate returns at most maxLen characters from s.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
