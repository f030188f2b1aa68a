package view

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/apidocs/internal/catalog"
)

func command(name, domain string) catalog.Command {
	return catalog.Command{Name: name, Domain: catalog.Domain{ID: domain, Name: domain}}
}

func TestGroupByDomain(t *testing.T) {
	commands := []catalog.Command{
		command("C1", "Users"),
		command("A1", "Auth"),
		command("C2", "Users"),
		command("B1", "Billing Plans"),
		command("A2", "Auth"),
	}

	groups := GroupByDomain(commands)
	require.Len(t, groups, 3)

	assert.Equal(t, "Auth", groups[0].Name)
	assert.Equal(t, "domain-Auth", groups[0].Anchor)
	assert.Equal(t, []string{"A1", "A2"}, commandNames(groups[0].Commands))

	assert.Equal(t, "Billing Plans", groups[1].Name)
	assert.Equal(t, "domain-Billing-Plans", groups[1].Anchor)

	assert.Equal(t, "Users", groups[2].Name)
	assert.Equal(t, []string{"C1", "C2"}, commandNames(groups[2].Commands))
}

func TestGroupByDomain_Empty(t *testing.T) {
	assert.Empty(t, GroupByDomain(nil))
}

func commandNames(commands []catalog.Command) []string {
	out := make([]string, 0, len(commands))
	for _, c := range commands {
		out = append(out, c.Name)
	}
	return out
}

func TestAnchors(t *testing.T) {
	assert.Equal(t, "domain-Account-Management", DomainAnchor("Account  Management"))
	assert.Equal(t, "domain-a-b-c", DomainAnchor("a\tb\nc"))
	assert.Equal(t, "domain-Auth__2__", CommandAnchor("Auth", 2))
	assert.Equal(t, "domain-Auth__2__0__", ExampleAnchor("Auth", 2, 0))
	assert.Equal(t, "domain-Auth__2__0__-request-body", ExampleAnchor("Auth", 2, 0)+SectionRequestBody)
}

func TestParseElement(t *testing.T) {
	tests := []struct {
		anchor   string
		expected Element
	}{
		{"", Element{Command: -1, Example: -1}},
		{"domain-Auth", Element{DomainAnchor: "domain-Auth", Command: -1, Example: -1}},
		{"domain-Auth__3__-title", Element{DomainAnchor: "domain-Auth", Command: 3, Example: -1}},
		{"domain-Auth__3__1__-response-body", Element{DomainAnchor: "domain-Auth", Command: 3, Example: 1}},
		{"domain-Auth__x__1__", Element{DomainAnchor: "domain-Auth", Command: -1, Example: -1}},
		{"some-other-id", Element{DomainAnchor: "some-other-id", Command: -1, Example: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.anchor, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseElement(tt.anchor))
		})
	}
}

func TestNewCommandView(t *testing.T) {
	cmd := catalog.Command{
		Name:         "READ_ACCOUNT",
		Method:       "get",
		Path:         "/accounts/{id}/",
		Domain:       catalog.Domain{ID: "accounts", Name: "Account Management"},
		AccessList:   []string{"ADMIN"},
		Title:        "Read Account",
		OutputSchema: json.RawMessage(`{"type":"object"}`),
		Examples: []catalog.Example{
			{
				Name: "200 (OK)",
				Request: catalog.Request{
					Path:    "/accounts/1/",
					Headers: map[string]string{"X-B": "2", "Authorization": "Bearer x"},
				},
				Response: catalog.Response{Content: json.RawMessage(`{"id":1}`)},
			},
		},
	}

	v := NewCommandView(cmd, 1)
	assert.Equal(t, "domain-Account-Management__1__", v.Anchor)
	assert.Equal(t, []string{"ADMIN"}, v.AccessList)
	assert.Empty(t, v.Description)
	assert.Empty(t, v.InputQuery)
	assert.Empty(t, v.InputBody)
	assert.Equal(t, "{\n  \"type\": \"object\"\n}", v.Output)

	require.Len(t, v.Examples, 1)
	ex := v.Examples[0]
	assert.Equal(t, "domain-Account-Management__1__0__", ex.Anchor)
	assert.Equal(t, "get", ex.Method)
	assert.Equal(t, "Authorization: Bearer x\nX-B: 2", ex.RequestHeaders)
	assert.Empty(t, ex.RequestContent)
	assert.Equal(t, "{\n  \"id\": 1\n}", ex.ResponseContent)
}

func TestNewCommandView_UnrestrictedShowsAny(t *testing.T) {
	v := NewCommandView(command("PING", "Health"), 0)
	assert.Equal(t, []string{AnyRole}, v.AccessList)
	assert.NotNil(t, v.Examples)
}

func TestBuild(t *testing.T) {
	domains := Build([]catalog.Command{
		command("U1", "Users"),
		command("A1", "Auth"),
		command("U2", "Users"),
	})

	require.Len(t, domains, 2)
	assert.Equal(t, "Auth", domains[0].Name)
	require.Len(t, domains[1].Commands, 2)
	assert.Equal(t, "domain-Users__1__", domains[1].Commands[1].Anchor)
}

func TestPrettyJSON_InvalidPassesThrough(t *testing.T) {
	assert.Equal(t, "{broken", PrettyJSON(json.RawMessage("{broken")))
	assert.Equal(t, "", PrettyJSON(nil))
}
