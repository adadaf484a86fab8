package commands

import (
	"github.com/spf13/cobra"

	"github.com/wau-ai/wau-cli/internal/currency"
	"github.com/wau-ai/wau-cli/internal/output"
)

var currenciesCmd = &cobra.Command{
	Use:   "currencies",
	Short: "List known pricing currencies",
	Long: `List the currencies the CLI knows how to format, fiat first, then
crypto assets. Other codes are accepted but trigger a warning on
registration.

Examples:
  wau currencies
  wau currencies --json`,
	Args: cobra.NoArgs,
	RunE: runCurrencies,
}

func init() {
	rootCmd.AddCommand(currenciesCmd)
}

func runCurrencies(cmd *cobra.Command, args []string) error {
	list := currency.List()

	if GetJSONOutput() {
		return output.PrintJSON(cmd.OutOrStdout(), list)
	}
	output.PrintCurrencies(cmd.OutOrStdout(), list)
	return nil
}
