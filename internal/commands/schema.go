package commands

import (
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/wau-ai/wau-cli/internal/agentcard"
	"github.com/wau-ai/wau-cli/internal/output"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [discovery|registration]",
	Short: "Print the JSON Schema of agent cards or registrations",
	Long: `Print a JSON Schema document.

  discovery      the Agent Card accepted from discovery (default)
  registration   the record submitted to POST /register

Examples:
  wau schema
  wau schema registration > registration.schema.json`,
	ValidArgs: []string{"discovery", "registration"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE:      runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	var schema *jsonschema.Schema
	if len(args) > 0 && args[0] == "registration" {
		schema = agentcard.RegistrationSchema()
	} else {
		schema = agentcard.DiscoverySchema()
	}
	return output.PrintJSON(cmd.OutOrStdout(), schema)
}
