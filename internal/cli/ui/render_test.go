package ui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conduit-lang/apidocs/internal/catalog"
	"github.com/conduit-lang/apidocs/internal/state"
	"github.com/conduit-lang/apidocs/internal/view"
)

func renderFixture() state.State {
	commands := []catalog.Command{
		{
			Name:         "CREATE_USER",
			Method:       "post",
			Path:         "/users/",
			Domain:       catalog.Domain{ID: "users", Name: "Users"},
			AccessList:   []string{"admin"},
			Title:        "Create User",
			OutputSchema: json.RawMessage(`{"type":"object"}`),
			Examples: []catalog.Example{{
				Name:     "201 (CREATED)",
				Request:  catalog.Request{Path: "/users/", Content: json.RawMessage(`{"name":"x"}`)},
				Response: catalog.Response{Content: json.RawMessage(`{"id":1}`)},
			}},
		},
		{
			Name:   "PING",
			Method: "get",
			Path:   "/ping/",
			Domain: catalog.Domain{ID: "health", Name: "Health Checks"},
			Title:  "Ping",
		},
	}

	return state.State{
		EntrypointURI:    "http://x/api",
		AllCommands:      commands,
		SelectedCommands: commands,
	}
}

func TestRenderState(t *testing.T) {
	var buf bytes.Buffer
	RenderState(&buf, renderFixture(), RenderOptions{NoColor: true})
	out := buf.String()

	assert.Contains(t, out, "Entrypoint: http://x/api")
	assert.Contains(t, out, "Fragment:   #entrypointUri=http%3A%2F%2Fx%2Fapi")
	assert.NotContains(t, out, "Query:")
	assert.Contains(t, out, "2 of 2 commands")
	assert.Contains(t, out, "Health Checks  #domain-Health-Checks")
	assert.Contains(t, out, "Users  #domain-Users")
	assert.Contains(t, out, "CREATE_USER")
	assert.Contains(t, out, "ANY")
	assert.NotContains(t, out, "INPUT QUERY")

	// Domains are listed alphabetically.
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Health Checks")), bytes.Index(buf.Bytes(), []byte("Users  #")))
}

func TestRenderState_SelectedElementExpandsCommand(t *testing.T) {
	s := renderFixture()
	s.SelectedElement = view.ExampleAnchor("Users", 0, 0) + view.SectionResponseBody

	var buf bytes.Buffer
	RenderState(&buf, s, RenderOptions{NoColor: true})
	out := buf.String()

	assert.Contains(t, out, "▶")
	assert.Contains(t, out, "Create User  #domain-Users__0__-title")
	assert.Contains(t, out, "NO INPUT QUERY")
	assert.Contains(t, out, "RESPONSE BODY")
	assert.Contains(t, out, `"id": 1`)
	assert.NotContains(t, out, "Ping  #")
}

func TestRenderState_Details(t *testing.T) {
	var buf bytes.Buffer
	RenderState(&buf, renderFixture(), RenderOptions{NoColor: true, Details: true})
	out := buf.String()

	assert.Contains(t, out, "Ping  #domain-Health-Checks__0__-title")
	assert.Contains(t, out, "REQUEST BODY")
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"NAME", "METHOD"}, true)
	table.AddRow("READ", "GET")
	table.AddRow("CREATE_USER", "POST")
	table.Render()

	assert.Equal(t, "NAME         METHOD\n"+
		"───────────  ──────\n"+
		"READ         GET\n"+
		"CREATE_USER  POST\n", buf.String())
}

func TestKeyValue(t *testing.T) {
	var buf bytes.Buffer
	KeyValue(&buf, [][2]string{{"Query", "x"}, {"Role", ""}, {"Entrypoint", "y"}}, true)
	assert.Equal(t, "Query:      x\nEntrypoint: y\n", buf.String())
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Loading", true)
	s.Start()
	s.Stop()
	s.Stop()
	s.Success("done")
	assert.Contains(t, buf.String(), "✓ done")
}
