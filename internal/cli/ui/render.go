package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/conduit-lang/apidocs/internal/fragment"
	"github.com/conduit-lang/apidocs/internal/state"
	"github.com/conduit-lang/apidocs/internal/view"
)

// RenderOptions configures RenderState
type RenderOptions struct {
	NoColor bool

	// Details prints schemas and examples under each command
	Details bool
}

// RenderState prints a filter state: the active filters, then the visible
// commands grouped by domain. The selected element, if it points at a
// command, is marked with "▶" and always shown in detail.
func RenderState(w io.Writer, s state.State, opts RenderOptions) {
	KeyValue(w, [][2]string{
		{"Entrypoint", s.EntrypointURI},
		{"Query", s.Query},
		{"Role", s.SelectedAccessRole},
		{"Element", s.SelectedElement},
		{"Fragment", "#" + fragment.Encode(s.Params())},
	}, opts.NoColor)

	gray := color.New(color.FgHiBlack)
	if opts.NoColor {
		gray.DisableColor()
	}
	gray.Fprintf(w, "%d of %d commands\n\n", len(s.SelectedCommands), len(s.AllCommands))

	selected := view.ParseElement(s.SelectedElement)
	for _, domain := range view.Build(s.SelectedCommands) {
		Header(w, fmt.Sprintf("%s  #%s", domain.Name, domain.Anchor), opts.NoColor)

		table := NewTable(w, []string{"", "NAME", "METHOD", "PATH", "ACCESS", "TITLE"}, opts.NoColor)
		for idx, cmd := range domain.Commands {
			marker := ""
			if isSelected(selected, domain.Anchor, idx) {
				marker = "▶"
			}
			table.AddRow(marker, cmd.Name, strings.ToUpper(cmd.Method), cmd.Path, strings.Join(cmd.AccessList, ","), cmd.Title)
		}
		table.Render()
		fmt.Fprintln(w)

		for idx, cmd := range domain.Commands {
			if opts.Details || isSelected(selected, domain.Anchor, idx) {
				RenderCommand(w, cmd, selected.Example, opts.NoColor)
			}
		}
	}
}

func isSelected(el view.Element, domainAnchor string, idx int) bool {
	return el.DomainAnchor == domainAnchor && el.Command == idx
}

// RenderCommand prints the schemas and examples of one command. The example
// at openExample is printed in full; others only by name.
func RenderCommand(w io.Writer, cmd view.CommandView, openExample int, noColor bool) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	if noColor {
		bold.DisableColor()
		cyan.DisableColor()
	}

	bold.Fprintf(w, "%s  #%s\n", cmd.Title, cmd.Anchor+view.SectionTitle)
	if cmd.Description != "" {
		fmt.Fprintln(w, indent(cmd.Description, "  "))
	}

	block := func(label, body, empty string) {
		cyan.Fprintf(w, "  %s\n", label)
		if body == "" {
			body = empty
		}
		fmt.Fprintln(w, indent(body, "    "))
	}

	block("INPUT QUERY", cmd.InputQuery, "NO INPUT QUERY")
	block("INPUT BODY", cmd.InputBody, "NO INPUT BODY")
	block("OUTPUT BODY", cmd.Output, "{}")

	for i, ex := range cmd.Examples {
		cyan.Fprintf(w, "  EXAMPLE %s  %s %s\n", ex.Name, strings.ToUpper(ex.Method), ex.Path)
		if openExample >= 0 && i != openExample {
			continue
		}
		if ex.RequestHeaders != "" {
			block("  REQUEST HEADERS", ex.RequestHeaders, "")
		}
		if ex.RequestContent != "" {
			block("  REQUEST BODY", ex.RequestContent, "")
		}
		if ex.ResponseContent != "" {
			block("  RESPONSE BODY", ex.ResponseContent, "")
		}
	}
	fmt.Fprintln(w)
}
