package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// layoutExtensions are offered when completing a layout argument.
var layoutExtensions = []string{"kle", "json", "txt"}

// completeLayouts completes layout file arguments.
func completeLayouts(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return layoutExtensions, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes the --format flag.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"json\tJSON plate records", "toml\tTOML plate records"}, cobra.ShellCompDirectiveNoFileComp
}

// completeStabilizers completes the --stabilizer flag.
func completeStabilizers(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"kad\tKAD plate-mount housings", "none\tno stabilizer cutouts"}, cobra.ShellCompDirectiveNoFileComp
}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	generators := map[string]func(root *cobra.Command, w io.Writer) error{
		"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
		"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
		"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
		"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
	}

	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for keyplate.

Layout arguments complete to .kle, .json and .txt files; --format and
--stabilizer complete to their accepted values.

  $ source <(keyplate completion bash)
  $ keyplate completion zsh > "${fpath[1]}/_keyplate"
  $ keyplate completion fish > ~/.config/fish/completions/keyplate.fish
  PS> keyplate completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, ok := generators[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell %q", args[0])
			}
			return gen(cmd.Root(), c.stdout)
		},
	}
}
