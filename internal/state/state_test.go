package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conduit-lang/apidocs/internal/catalog"
)

func cmd(name, domain, title string, roles ...string) catalog.Command {
	return catalog.Command{
		Name:       name,
		Method:     "get",
		Path:       "/" + name + "/",
		Domain:     catalog.Domain{ID: domain, Name: domain},
		AccessList: roles,
		Title:      title,
	}
}

func names(commands []catalog.Command) []string {
	out := make([]string, 0, len(commands))
	for _, c := range commands {
		out = append(out, c.Name)
	}
	return out
}

func sampleCommands() []catalog.Command {
	unrestricted := cmd("PING", "Health", "Ping")
	unrestricted.AccessList = nil
	described := cmd("BULK_READ_USERS", "Users", "List Users", "admin", "user")
	described.Description = "Paginated listing of every account"

	return []catalog.Command{
		cmd("CREATE_USER", "Users", "Create User", "admin"),
		cmd("READ_USER", "Users", "Read User", "admin", "user"),
		unrestricted,
		described,
		cmd("DELETE_USER", "Users", "Delete User", "admin"),
	}
}

func TestSelect(t *testing.T) {
	all := sampleCommands()

	tests := []struct {
		name     string
		role     string
		query    string
		expected []string
	}{
		{"no filters", "", "", []string{"CREATE_USER", "READ_USER", "PING", "BULK_READ_USERS", "DELETE_USER"}},
		{"role only", "user", "", []string{"READ_USER", "BULK_READ_USERS"}},
		{"role is case sensitive", "ADMIN", "", []string{}},
		{"unrestricted matches no role", "ANY", "", []string{}},
		{"query matches title", "", "create", []string{"CREATE_USER"}},
		{"query is case insensitive", "", "CREATE", []string{"CREATE_USER"}},
		{"query matches full title", "", "Create User", []string{"CREATE_USER"}},
		{"query matches method", "", "GET", []string{"CREATE_USER", "READ_USER", "PING", "BULK_READ_USERS", "DELETE_USER"}},
		{"query matches path", "", "/ping/", []string{"PING"}},
		{"query matches description", "", "paginated", []string{"BULK_READ_USERS"}},
		{"query matches name", "", "delete_user", []string{"DELETE_USER"}},
		{"role then query", "admin", "user", []string{"CREATE_USER", "READ_USER", "BULK_READ_USERS", "DELETE_USER"}},
		{"no match", "admin", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(all, tt.role, tt.query)
			assert.NotNil(t, got)
			assert.Equal(t, tt.expected, names(got))
		})
	}
}

func TestSelect_IsSubsequenceOfInput(t *testing.T) {
	all := sampleCommands()

	for _, role := range []string{"", "admin", "user", "nobody"} {
		for _, query := range []string{"", "user", "e", "zzz"} {
			got := Select(all, role, query)

			i := 0
			for _, c := range got {
				for i < len(all) && all[i].Name != c.Name {
					i++
				}
				if !assert.Less(t, i, len(all), "role=%q query=%q", role, query) {
					return
				}
				i++
			}
		}
	}
}

func TestSelect_DoesNotAliasInput(t *testing.T) {
	all := sampleCommands()
	got := Select(all, "", "")
	got[0].Name = "CHANGED"
	assert.Equal(t, "CREATE_USER", all[0].Name)
}

func TestState_Params(t *testing.T) {
	s := State{
		EntrypointURI:      "http://x/api",
		SelectedAccessRole: "admin",
	}
	assert.Equal(t, map[string]string{
		KeyEntrypointURI:      "http://x/api",
		KeySelectedAccessRole: "admin",
	}, s.Params())

	assert.Empty(t, State{}.Params())
}
