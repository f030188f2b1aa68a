package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/apidocs/internal/catalog"
	"github.com/conduit-lang/apidocs/internal/cli/ui"
	"github.com/conduit-lang/apidocs/internal/fragment"
	"github.com/conduit-lang/apidocs/internal/state"
	"github.com/conduit-lang/apidocs/internal/watch"
)

var (
	errLoadFailed = errors.New("catalog load failed")
	errEmptyURI   = errors.New("entry point URI is empty")
)

// NewViewCommand creates the view command
func NewViewCommand() *cobra.Command {
	var (
		uri       string
		query     string
		role      string
		element   string
		details   bool
		listRoles bool
		watchFile bool
	)

	cmd := &cobra.Command{
		Use:   "view [fragment]",
		Short: "Show the commands selected by a fragment",
		Long: `Restore a filter state from a URL fragment and print the selected commands.

The fragment is replayed first; flags are then applied on top of it, in the
order --uri, --element, --role, --query. Passing an empty value clears that
filter. The resulting fragment is printed so the view can be shared.

Examples:
  # Load a catalog and search it
  apidocs view --uri https://api.example.com/commands/ --query account

  # Restore a shared view
  apidocs view '#entrypointUri=commands.json&selectedAccessRole=ADMIN'

  # List the roles a catalog grants
  apidocs view --uri commands.json --roles

  # Re-render whenever a local catalog file changes
  apidocs view --uri commands.json --watch
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("uri") && strings.TrimSpace(uri) == "" {
				return errEmptyURI
			}

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			initial := ""
			if len(args) == 1 {
				initial = args[0]
			}

			ctx := cmd.Context()
			v := &viewer{
				env:     e,
				engine:  state.New(e.loader(), fragment.NewMemoryLocation(initial), state.WithLogger(e.logger)),
				details: details,
			}

			loadErr := v.load(fragment.Decode(initial)[state.KeyEntrypointURI], func() error {
				return v.engine.Init(ctx)
			})

			flags := cmd.Flags()
			if flags.Changed("uri") {
				loadErr = v.load(uri, func() error {
					return v.engine.UpdateWithEntrypointURI(ctx, uri)
				})
			}
			if flags.Changed("element") {
				v.engine.UpdateWithSelectedElement(element)
			}
			if flags.Changed("role") {
				v.engine.UpdateWithSelectedAccessRole(role)
			}
			if flags.Changed("query") {
				v.engine.UpdateWithQuery(query)
			}

			if listRoles {
				v.renderRoles()
				return loadErr
			}

			v.render()
			if !watchFile {
				return loadErr
			}
			return v.watch(ctx)
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "", "Entry-point URI of the catalog (http, https or file)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Free-text filter")
	cmd.Flags().StringVarP(&role, "role", "r", "", "Access role filter")
	cmd.Flags().StringVarP(&element, "element", "e", "", "Anchor of the selected element")
	cmd.Flags().BoolVarP(&details, "details", "d", false, "Show schemas and examples for every command")
	cmd.Flags().BoolVar(&listRoles, "roles", false, "List the roles granted by the catalog and exit")
	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "Re-render when a local catalog file changes")

	_ = cmd.RegisterFlagCompletionFunc("role", completeRoles)

	return cmd
}

// viewer drives an engine for one terminal session
type viewer struct {
	env     *env
	engine  *state.Engine
	details bool

	// serializes renders from the watcher goroutine
	mu sync.Mutex
}

// load runs fn, behind a spinner when uri is set, and reports any failure
func (v *viewer) load(uri string, fn func() error) error {
	var err error
	if uri == "" {
		err = fn()
	} else {
		spinner := ui.NewSpinner(v.env.errOut, fmt.Sprintf("Loading %s", uri), v.env.noColor)
		spinner.Start()
		err = fn()
		spinner.Stop()
	}

	if err != nil {
		v.env.logger.Debug("load failed", zap.String("uri", uri), zap.Error(err))
		fmt.Fprint(v.env.errOut, ui.LoadError(uri, err, v.env.noColor))
		return errLoadFailed
	}
	return nil
}

func (v *viewer) render() {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.engine.State()
	if s.SelectedAccessRole != "" && len(s.AllCommands) > 0 {
		roles := catalog.Roles(s.AllCommands)
		if !slices.Contains(roles, s.SelectedAccessRole) {
			suggestions := ui.FindSimilar(s.SelectedAccessRole, roles, nil)
			fmt.Fprint(v.env.errOut, ui.RoleNotFound(s.SelectedAccessRole, suggestions, v.env.noColor))
		}
	}

	ui.RenderState(v.env.out, s, ui.RenderOptions{
		NoColor: v.env.noColor,
		Details: v.details,
	})
}

func (v *viewer) renderRoles() {
	roles := catalog.Roles(v.engine.State().AllCommands)
	ui.Header(v.env.out, fmt.Sprintf("Roles (%d)", len(roles)), v.env.noColor)
	for _, role := range roles {
		fmt.Fprintf(v.env.out, "  %s\n", role)
	}
}

// watch re-renders after every change to the entry-point file until ctx is
// done
func (v *viewer) watch(ctx context.Context) error {
	uri := v.engine.State().EntrypointURI
	if uri == "" {
		return errors.New("--watch needs an entry point")
	}

	watcher, err := watch.NewCatalogWatcher(uri, v.engine, v.env.logger)
	if err != nil {
		return err
	}
	watcher.OnReload = func(err error) {
		if err != nil {
			if !errors.Is(err, state.ErrSuperseded) {
				fmt.Fprint(v.env.errOut, ui.LoadError(uri, err, v.env.noColor))
			}
			return
		}
		v.render()
	}

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	hint := color.New(color.FgYellow)
	if v.env.noColor {
		hint.DisableColor()
	}
	hint.Fprintf(v.env.errOut, "Watching %s, press Ctrl+C to stop\n", uri)

	<-ctx.Done()
	return nil
}
