package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for binlayout.

To load completions:

Bash:
  $ binlayout completion bash > /etc/bash_completion.d/binlayout

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  $ binlayout completion zsh > "${fpath[1]}/_binlayout"

Fish:
  $ binlayout completion fish > ~/.config/fish/completions/binlayout.fish

PowerShell:
  PS> binlayout completion powershell | Out-String | Invoke-Expression
`,
	Annotations:           cmdutil.NoConfig(),
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(out)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}
