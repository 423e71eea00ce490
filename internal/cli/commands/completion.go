package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/explorer/internal/app"
)

// NewCompletionCommand creates the completion command for shell completions
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate a shell completion script. Collection names are completed
from the configured data source.

Bash:
  $ source <(explorer completion bash)

Zsh:
  $ explorer completion zsh > "${fpath[1]}/_explorer"

Fish:
  $ explorer completion fish | source

PowerShell:
  PS> explorer completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeCollection completes the first argument with collection names.
// Any failure yields no suggestions.
func completeCollection(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg.Log.Level = "fatal"
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer a.Close()

	var names []string
	for _, name := range collectionNames(cmd.Context(), a.Service) {
		if strings.HasPrefix(name, toComplete) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
