package view

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/conduit-lang/apidocs/internal/catalog"
)

// AnyRole is shown for commands that declare no access list
const AnyRole = "ANY"

// CommandView holds the display-ready fields of a command
type CommandView struct {
	Anchor      string        `json:"anchor"`
	Name        string        `json:"name"`
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	AccessList  []string      `json:"access_list"`
	InputQuery  string        `json:"input_query,omitempty"`
	InputBody   string        `json:"input_body,omitempty"`
	Output      string        `json:"output"`
	Examples    []ExampleView `json:"examples"`
}

// ExampleView holds the display-ready fields of an example
type ExampleView struct {
	Anchor          string `json:"anchor"`
	Name            string `json:"name"`
	Method          string `json:"method"`
	Path            string `json:"path"`
	RequestHeaders  string `json:"request_headers,omitempty"`
	RequestContent  string `json:"request_content,omitempty"`
	ResponseContent string `json:"response_content,omitempty"`
}

// DomainView is a domain group with display-ready commands
type DomainView struct {
	Name     string        `json:"name"`
	Anchor   string        `json:"anchor"`
	Commands []CommandView `json:"commands"`
}

// Build groups commands by domain and resolves their display fields
func Build(commands []catalog.Command) []DomainView {
	groups := GroupByDomain(commands)

	domains := make([]DomainView, 0, len(groups))
	for _, g := range groups {
		views := make([]CommandView, 0, len(g.Commands))
		for idx, cmd := range g.Commands {
			views = append(views, NewCommandView(cmd, idx))
		}
		domains = append(domains, DomainView{
			Name:     g.Name,
			Anchor:   g.Anchor,
			Commands: views,
		})
	}
	return domains
}

// NewCommandView resolves the display fields of the idx-th command of its
// domain group.
func NewCommandView(cmd catalog.Command, idx int) CommandView {
	accessList := cmd.AccessList
	if !cmd.AccessRestricted() {
		accessList = []string{AnyRole}
	}

	examples := make([]ExampleView, 0, len(cmd.Examples))
	for i, ex := range cmd.Examples {
		examples = append(examples, ExampleView{
			Anchor:          ExampleAnchor(cmd.Domain.Name, idx, i),
			Name:            ex.Name,
			Method:          cmd.Method,
			Path:            ex.Request.Path,
			RequestHeaders:  FormatHeaders(ex.Request.Headers),
			RequestContent:  PrettyJSON(ex.Request.Content),
			ResponseContent: PrettyJSON(ex.Response.Content),
		})
	}

	return CommandView{
		Anchor:      CommandAnchor(cmd.Domain.Name, idx),
		Name:        cmd.Name,
		Method:      cmd.Method,
		Path:        cmd.Path,
		Title:       cmd.Title,
		Description: cmd.Description,
		AccessList:  accessList,
		InputQuery:  PrettyJSON(cmd.InputQuerySchema),
		InputBody:   PrettyJSON(cmd.InputBodySchema),
		Output:      PrettyJSON(cmd.OutputSchema),
		Examples:    examples,
	}
}

// PrettyJSON indents raw JSON by two spaces. Absent input yields "" and
// input that fails to indent is returned as is.
func PrettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// FormatHeaders renders headers as "Name: value" lines sorted by name
func FormatHeaders(headers map[string]string) string {
	if len(headers) == 0 {
		return ""
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+headers[k])
	}
	return strings.Join(lines, "\n")
}
