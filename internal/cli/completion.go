package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// designExts are the file extensions offered when completing a design path.
var designExts = []string{"toml", "yaml", "yml", "json"}

// placementExts are the extensions offered when completing a placement path.
var placementExts = []string{"json", "zst"}

// completeDesign completes the design argument of place and seeds.
func completeDesign(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return designExts, cobra.ShellCompDirectiveFilterFileExt
}

// completeCheck completes the design, then the placement argument of check.
func completeCheck(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return designExts, cobra.ShellCompDirectiveFilterFileExt
	case 1:
		return placementExts, cobra.ShellCompDirectiveFilterFileExt
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	shells := []string{"bash", "zsh", "fish", "powershell"}
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("completion [%s]", strings.Join(shells, "|")),
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for relplace.

Design arguments complete to .toml, .yaml, .yml and .json files; the
placement argument of check completes to .json and .zst files.

Bash:
  $ source <(relplace completion bash)

Zsh:
  $ relplace completion zsh > "${fpath[1]}/_relplace"

Fish:
  $ relplace completion fish > ~/.config/fish/completions/relplace.fish

PowerShell:
  PS> relplace completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
		},
	}

	return cmd
}
