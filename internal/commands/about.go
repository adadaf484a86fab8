package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wau-ai/wau-cli/internal/i18n"
	"github.com/wau-ai/wau-cli/internal/output"
)

var aboutCmd = &cobra.Command{
	Use:   "about [page]",
	Short: "Show information pages about WAU",
	Long: `Show one of the WAU information pages in the selected language.

Pages: ` + strings.Join(i18n.PageNames, ", ") + `

Examples:
  wau about
  wau about waus --lang zh`,
	ValidArgs: i18n.PageNames,
	Args:      cobra.MaximumNArgs(1),
	RunE:      runAbout,
}

func init() {
	rootCmd.AddCommand(aboutCmd)
}

func runAbout(cmd *cobra.Command, args []string) error {
	name := "about"
	if len(args) > 0 {
		name = strings.ToLower(args[0])
	}

	page, ok := i18n.PageFor(name)
	if !ok {
		return &ExitError{
			Code: ExitValidation,
			Err:  fmt.Errorf("unknown page %q (available: %s)", name, strings.Join(i18n.PageNames, ", ")),
		}
	}

	if GetJSONOutput() {
		return output.PrintJSON(cmd.OutOrStdout(), page)
	}
	output.PrintPage(cmd.OutOrStdout(), page)
	return nil
}
