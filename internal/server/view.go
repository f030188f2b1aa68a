package server

import (
	"github.com/conduit-lang/apidocs/internal/catalog"
	"github.com/conduit-lang/apidocs/internal/fragment"
	"github.com/conduit-lang/apidocs/internal/state"
	"github.com/conduit-lang/apidocs/internal/view"
)

// ViewResponse is the JSON projection of a session's state
type ViewResponse struct {
	ID                 string            `json:"id"`
	Fragment           string            `json:"fragment"`
	EntrypointURI      string            `json:"entrypoint_uri"`
	Query              string            `json:"query"`
	SelectedAccessRole string            `json:"selected_access_role"`
	SelectedElement    string            `json:"selected_element"`
	Total              int               `json:"total"`
	Selected           int               `json:"selected"`
	Roles              []string          `json:"roles"`
	Domains            []view.DomainView `json:"domains"`
	LoadError          string            `json:"load_error,omitempty"`
}

func newViewResponse(id string, st state.State) ViewResponse {
	return ViewResponse{
		ID:                 id,
		Fragment:           fragment.Encode(st.Params()),
		EntrypointURI:      st.EntrypointURI,
		Query:              st.Query,
		SelectedAccessRole: st.SelectedAccessRole,
		SelectedElement:    st.SelectedElement,
		Total:              len(st.AllCommands),
		Selected:           len(st.SelectedCommands),
		Roles:              catalog.Roles(st.AllCommands),
		Domains:            view.Build(st.SelectedCommands),
	}
}
