package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for wau.

To load completions:

Bash:
  $ source <(wau completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ wau completion bash > /etc/bash_completion.d/wau
  # macOS:
  $ wau completion bash > $(brew --prefix)/etc/bash_completion.d/wau

Zsh:
  $ source <(wau completion zsh)
  # To load completions for each session, execute once:
  $ wau completion zsh > "${fpath[1]}/_wau"

Fish:
  $ wau completion fish | source
  # To load completions for each session, execute once:
  $ wau completion fish > ~/.config/fish/completions/wau.fish

PowerShell:
  PS> wau completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

var completionNoDesc bool

func init() {
	completionCmd.Flags().BoolVar(&completionNoDesc, "no-descriptions", false, "Omit command descriptions from completions")
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	root, w, desc := cmd.Root(), cmd.OutOrStdout(), !completionNoDesc

	var err error
	switch args[0] {
	case "bash":
		err = root.GenBashCompletionV2(w, desc)
	case "zsh":
		if desc {
			err = root.GenZshCompletion(w)
		} else {
			err = root.GenZshCompletionNoDesc(w)
		}
	case "fish":
		err = root.GenFishCompletion(w, desc)
	case "powershell":
		if desc {
			err = root.GenPowerShellCompletionWithDesc(w)
		} else {
			err = root.GenPowerShellCompletion(w)
		}
	}
	if err != nil {
		return fmt.Errorf("generating %s completion: %w", args[0], err)
	}
	return nil
}
