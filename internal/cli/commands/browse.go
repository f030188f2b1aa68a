package commands

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/apidocs/internal/catalog"
	"github.com/conduit-lang/apidocs/internal/cli/ui"
	"github.com/conduit-lang/apidocs/internal/fragment"
	"github.com/conduit-lang/apidocs/internal/state"
	"github.com/conduit-lang/apidocs/internal/view"
)

const (
	actionSearch = "Search"
	actionRole   = "Filter by role"
	actionOpen   = "Open a command"
	actionLoad   = "Load entry point"
	actionList   = "List commands"
	actionQuit   = "Quit"
)

var browseActions = []string{actionSearch, actionRole, actionOpen, actionLoad, actionList, actionQuit}

// prompter asks the user for input
type prompter interface {
	Select(message string, options []string) (string, error)
	Input(message, def string, suggest func(string) []string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Select(message string, options []string) (string, error) {
	var answer string
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 15,
	}
	err := survey.AskOne(prompt, &answer)
	return answer, err
}

func (surveyPrompter) Input(message, def string, suggest func(string) []string) (string, error) {
	var answer string
	prompt := &survey.Input{
		Message: message,
		Default: def,
		Suggest: suggest,
	}
	err := survey.AskOne(prompt, &answer)
	return answer, err
}

// newPrompter is replaced in tests
var newPrompter = func() prompter { return surveyPrompter{} }

// NewBrowseCommand creates the interactive browse command
func NewBrowseCommand() *cobra.Command {
	var uri string

	cmd := &cobra.Command{
		Use:   "browse [fragment]",
		Short: "Browse a catalog interactively",
		Long: `Browse a catalog with interactive prompts.

Search, filter by role and open commands one step at a time. The fragment
of the current view is printed after every step, ready to share.

Examples:
  apidocs browse --uri https://api.example.com/commands/
  apidocs browse '#entrypointUri=commands.json&query=account'
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
			b := &browser{
				viewer: &viewer{
					env:    e,
					engine: state.New(e.loader(), fragment.NewMemoryLocation(initial), state.WithLogger(e.logger)),
				},
				prompt: newPrompter(),
			}

			b.load(fragment.Decode(initial)[state.KeyEntrypointURI], func() error {
				return b.engine.Init(ctx)
			})
			if cmd.Flags().Changed("uri") {
				b.load(uri, func() error {
					return b.engine.UpdateWithEntrypointURI(ctx, uri)
				})
			}

			for {
				b.summary()
				action, err := b.prompt.Select("What next?", browseActions)
				if err != nil {
					return quitOnInterrupt(err)
				}

				switch action {
				case actionQuit:
					return nil
				case actionSearch:
					err = b.search()
				case actionRole:
					err = b.role()
				case actionOpen:
					err = b.open()
				case actionLoad:
					err = b.loadPrompt(func(target string) error {
						return b.engine.UpdateWithEntrypointURI(ctx, target)
					})
				case actionList:
					b.render()
				}
				if err != nil {
					return quitOnInterrupt(err)
				}
			}
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "", "Entry-point URI of the catalog (http, https or file)")

	return cmd
}

// browser runs the prompt loop over a viewer
type browser struct {
	*viewer
	prompt prompter
}

func quitOnInterrupt(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return nil
	}
	return err
}

func (b *browser) summary() {
	s := b.engine.State()
	ui.KeyValue(b.env.out, [][2]string{
		{"Commands", fmt.Sprintf("%d of %d", len(s.SelectedCommands), len(s.AllCommands))},
		{"Fragment", "#" + fragment.Encode(s.Params())},
	}, b.env.noColor)
}

func (b *browser) search() error {
	query, err := b.prompt.Input("Search:", b.engine.State().Query, nil)
	if err != nil {
		return err
	}
	b.engine.UpdateWithQuery(strings.TrimSpace(query))
	return nil
}

func (b *browser) role() error {
	s := b.engine.State()
	roles := catalog.Roles(s.AllCommands)

	role, err := b.prompt.Input("Role (empty for any):", s.SelectedAccessRole, func(partial string) []string {
		var matches []string
		for _, r := range roles {
			if strings.HasPrefix(strings.ToLower(r), strings.ToLower(partial)) {
				matches = append(matches, r)
			}
		}
		return matches
	})
	if err != nil {
		return err
	}

	role = strings.TrimSpace(role)
	if role != "" && !slices.Contains(roles, role) {
		fmt.Fprint(b.env.errOut, ui.RoleNotFound(role, ui.FindSimilar(role, roles, nil), b.env.noColor))
	}
	b.engine.UpdateWithSelectedAccessRole(role)
	return nil
}

func (b *browser) open() error {
	domains := view.Build(b.engine.State().SelectedCommands)

	var options []string
	byOption := make(map[string]view.CommandView)
	for _, d := range domains {
		for _, cmd := range d.Commands {
			option := fmt.Sprintf("%s / %s  %s", d.Name, cmd.Name, cmd.Title)
			options = append(options, option)
			byOption[option] = cmd
		}
	}
	if len(options) == 0 {
		fmt.Fprintln(b.env.errOut, "No commands match the current filters.")
		return nil
	}

	choice, err := b.prompt.Select("Command:", options)
	if err != nil {
		return err
	}

	cmd, ok := byOption[choice]
	if !ok {
		return fmt.Errorf("unknown command %q", choice)
	}
	b.engine.UpdateWithSelectedElement(cmd.Anchor)
	ui.RenderCommand(b.env.out, cmd, -1, b.env.noColor)
	return nil
}

// loadPrompt asks for an entry point and loads it. A failed load is reported
// and the loop continues with the previous catalog.
func (b *browser) loadPrompt(fn func(string) error) error {
	target, err := b.prompt.Input("Entry point URI:", b.engine.State().EntrypointURI, nil)
	if err != nil {
		return err
	}
	target = strings.TrimSpace(target)
	if target == "" {
		fmt.Fprintln(b.env.errOut, "No entry point given, keeping the current catalog.")
		return nil
	}
	b.load(target, func() error { return fn(target) })
	return nil
}
