package cmd

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for bundlebudget.

To load completions:

Bash:
  $ source <(bundlebudget completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ bundlebudget completion bash > /etc/bash_completion.d/bundlebudget
  # macOS:
  $ bundlebudget completion bash > $(brew --prefix)/etc/bash_completion.d/bundlebudget

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ bundlebudget completion zsh > "${fpath[1]}/_bundlebudget"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ bundlebudget completion fish | source

  # To load completions for each session, execute once:
  $ bundlebudget completion fish > ~/.config/fish/completions/bundlebudget.fish

PowerShell:
  PS> bundlebudget completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> bundlebudget completion powershell > bundlebudget.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		default:
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
	},
}
