package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mindcraft.

Bash:
  $ source <(mindcraft completion bash)

Zsh:
  $ mindcraft completion zsh > "${fpath[1]}/_mindcraft"

Fish:
  $ mindcraft completion fish > ~/.config/fish/completions/mindcraft.fish

PowerShell:
  PS> mindcraft completion powershell | Out-String | Invoke-Expression

Map arguments complete to the names in the configured store.`,
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
}

// completeMapNames completes the first argument with map names from the
// store selected by --store, or the configured store. Paths fall back to
// file completion.
func (c *CLI) completeMapNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if isPathArg(toComplete) {
		return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
	}

	uri, _ := cmd.Flags().GetString("store")
	st, _, err := c.openStore(cmd.Context(), uri)
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}
	defer st.Close()

	names, err := st.List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}
	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
