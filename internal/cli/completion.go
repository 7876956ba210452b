package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for playgraph.

To load completions:

Bash:
  $ source <(playgraph completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ playgraph completion bash > /etc/bash_completion.d/playgraph
  # macOS:
  $ playgraph completion bash > $(brew --prefix)/etc/bash_completion.d/playgraph

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ playgraph completion zsh > "${fpath[1]}/_playgraph"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ playgraph completion fish | source

  # To load completions for each session, execute once:
  $ playgraph completion fish > ~/.config/fish/completions/playgraph.fish

PowerShell:
  PS> playgraph completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> playgraph completion powershell > playgraph.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
