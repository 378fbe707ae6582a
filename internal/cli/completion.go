package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for bookplot.

To load completions:

Bash:
  $ source <(bookplot completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ bookplot completion bash > /etc/bash_completion.d/bookplot
  # macOS:
  $ bookplot completion bash > $(brew --prefix)/etc/bash_completion.d/bookplot

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ bookplot completion zsh > "${fpath[1]}/_bookplot"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ bookplot completion fish | source

  # To load completions for each session, execute once:
  $ bookplot completion fish > ~/.config/fish/completions/bookplot.fish

PowerShell:
  PS> bookplot completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> bookplot completion powershell > bookplot.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(stdout, true)
			case "zsh":
				return root.GenZshCompletion(stdout)
			case "fish":
				return root.GenFishCompletion(stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(stdout)
			}
		},
	}

	return cmd
}
