package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/apidocs/internal/catalog"
	"github.com/conduit-lang/apidocs/internal/fragment"
	"github.com/conduit-lang/apidocs/internal/state"
)

// NewCompletionCommand creates the completion command for shell completions
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Print a completion script for apidocs.

Besides subcommands and flags, "view --role" completes the roles of the
catalog named by --uri or by the fragment argument.

Examples:
  source <(apidocs completion bash)
  apidocs completion zsh > "${fpath[1]}/_apidocs"
  apidocs completion fish | source
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()

			switch shell := args[0]; shell {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell %q", shell)
			}
		},
	}

	return cmd
}

// completeRoles offers the roles granted by the catalog named by --uri, or
// by the entry point of the fragment argument
func completeRoles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	uri, _ := cmd.Flags().GetString("uri")
	if uri == "" && len(args) == 1 {
		uri = fragment.Decode(args[0])[state.KeyEntrypointURI]
	}
	if uri == "" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := catalog.DefaultLoaderConfig()
	cfg.Timeout = 3 * time.Second

	cat, err := catalog.NewHTTPLoader(cfg, nil).Load(ctx, uri)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var roles []string
	for _, role := range cat.Roles() {
		if strings.HasPrefix(role, toComplete) {
			roles = append(roles, role)
		}
	}
	return roles, cobra.ShellCompDirectiveNoFileComp
}
