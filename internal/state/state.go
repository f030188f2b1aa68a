// Package state owns the filter state of a documentation session: the
// canonical catalog, the active filters, and the visible command subset
// derived from them. The state is mirrored into a URL fragment so a view can
// be reproduced from its address.
package state

import (
	"strings"

	"github.com/conduit-lang/apidocs/internal/catalog"
)

// Fragment keys, one per filter field
const (
	KeyEntrypointURI      = "entrypointUri"
	KeyQuery              = "query"
	KeySelectedAccessRole = "selectedAccessRole"
	KeySelectedElement    = "selectedElement"
)

// State is an immutable snapshot of a session. Slices are shared between
// snapshots and must not be modified by readers.
type State struct {
	EntrypointURI      string
	Query              string
	SelectedAccessRole string

	// SelectedElement is an opaque anchor used by renderers to scroll and
	// expand; it never affects SelectedCommands.
	SelectedElement string

	// AllCommands is the canonical set from the last successful load
	AllCommands []catalog.Command
	AllDomains  []catalog.Domain

	// SelectedCommands is always Select(AllCommands, SelectedAccessRole, Query)
	SelectedCommands []catalog.Command
}

// Params maps the filter fields to fragment parameters. Empty fields are
// left out.
func (s State) Params() map[string]string {
	params := make(map[string]string, 4)
	set := func(key, value string) {
		if value != "" {
			params[key] = value
		}
	}
	set(KeyEntrypointURI, s.EntrypointURI)
	set(KeyQuery, s.Query)
	set(KeySelectedAccessRole, s.SelectedAccessRole)
	set(KeySelectedElement, s.SelectedElement)
	return params
}

// Select derives the visible commands: the access-role predicate first, then
// the text query, keeping catalog order. An empty role or query passes
// everything at that stage. The result is always a fresh slice.
func Select(all []catalog.Command, role, query string) []catalog.Command {
	selected := make([]catalog.Command, 0, len(all))
	for _, cmd := range all {
		if role != "" && !cmd.HasRole(role) {
			continue
		}
		selected = append(selected, cmd)
	}

	if query == "" {
		return selected
	}

	needle := strings.ToLower(query)
	matched := make([]catalog.Command, 0, len(selected))
	for _, cmd := range selected {
		if strings.Contains(textRepresentation(cmd), needle) {
			matched = append(matched, cmd)
		}
	}
	return matched
}

// textRepresentation is the lower-cased text a query is matched against
func textRepresentation(cmd catalog.Command) string {
	return strings.ToLower(strings.Join([]string{
		cmd.Name,
		cmd.Title,
		cmd.Method,
		cmd.Path,
		cmd.Description,
	}, "\n"))
}
