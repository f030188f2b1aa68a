package commands

import (
	"errors"
	"strings"
	"testing"
)

func TestViewCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		contains   []string
		excludes   []string
		errContain []string
	}{
		{
			name:     "load and filter by role",
			args:     []string{"view", "--uri", testCatalog, "--role", "ADMIN"},
			contains: []string{"2 of 3 commands", "READ_ACCOUNT", "BULK_READ_ACCOUNTS", "selectedAccessRole=ADMIN"},
			excludes: []string{"CREATE_AUTH_TOKEN"},
		},
		{
			name:     "restore from fragment",
			args:     []string{"view", "#entrypointUri=" + testCatalog + "&query=token"},
			contains: []string{"1 of 3 commands", "CREATE_AUTH_TOKEN", "query=token"},
			excludes: []string{"READ_ACCOUNT"},
		},
		{
			name:     "flag clears fragment filter",
			args:     []string{"view", "#entrypointUri=" + testCatalog + "&query=token", "--query", ""},
			contains: []string{"3 of 3 commands"},
			excludes: []string{"query=token"},
		},
		{
			name:     "selected command is expanded",
			args:     []string{"view", "--uri", testCatalog, "--element", "domain-Auth__0__"},
			contains: []string{"▶", "Create Auth Token  #domain-Auth__0__-title", "INPUT BODY"},
		},
		{
			name:       "unknown role suggests close match",
			args:       []string{"view", "--uri", testCatalog, "--role", "ADMN"},
			contains:   []string{"0 of 3 commands"},
			errContain: []string{"ROLE NOT FOUND", "Did you mean: ADMIN?"},
		},
		{
			name:     "details shows every command",
			args:     []string{"view", "--uri", testCatalog, "--details"},
			contains: []string{"Read Account  #", "Bulk Read Accounts  #", "NO INPUT QUERY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runCommand(t, tt.args...)
			if err != nil {
				t.Fatalf("view failed: %v\nstderr:\n%s", err, stderr)
			}

			for _, want := range tt.contains {
				if !strings.Contains(stdout, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(stdout, unwanted) {
					t.Errorf("expected output not to contain %q, got:\n%s", unwanted, stdout)
				}
			}
			for _, want := range tt.errContain {
				if !strings.Contains(stderr, want) {
					t.Errorf("expected stderr to contain %q, got:\n%s", want, stderr)
				}
			}
		})
	}
}

func TestViewCommand_Roles(t *testing.T) {
	stdout, _, err := runCommand(t, "view", "--uri", testCatalog, "--roles")
	if err != nil {
		t.Fatalf("view --roles failed: %v", err)
	}

	if !strings.Contains(stdout, "Roles (2)") {
		t.Errorf("expected role count, got:\n%s", stdout)
	}
	admin := strings.Index(stdout, "  ADMIN")
	learner := strings.Index(stdout, "  LEARNER")
	if admin < 0 || learner < 0 || admin > learner {
		t.Errorf("expected sorted roles, got:\n%s", stdout)
	}
}

func TestViewCommand_LoadFailure(t *testing.T) {
	stdout, stderr, err := runCommand(t, "view", "--uri", "missing.json", "--query", "x")
	if !errors.Is(err, errLoadFailed) {
		t.Fatalf("expected errLoadFailed, got %v", err)
	}

	if !strings.Contains(stderr, "CATALOG LOAD FAILED") {
		t.Errorf("expected load failure message, got:\n%s", stderr)
	}
	// The URI and remaining filters are still recorded
	if !strings.Contains(stdout, "entrypointUri=missing.json") || !strings.Contains(stdout, "query=x") {
		t.Errorf("expected fragment to keep the URI and query, got:\n%s", stdout)
	}
}

func TestViewCommand_WatchNeedsEntrypoint(t *testing.T) {
	_, _, err := runCommand(t, "view", "--watch")
	if err == nil || !strings.Contains(err.Error(), "--watch") {
		t.Errorf("expected --watch error, got %v", err)
	}
}

func TestViewCommand_TooManyArgs(t *testing.T) {
	if _, _, err := runCommand(t, "view", "#a=1", "#b=2"); err == nil {
		t.Error("expected error for two fragments")
	}
}

func TestViewCommand_EmptyURI(t *testing.T) {
	for _, uri := range []string{"", "  "} {
		stdout, _, err := runCommand(t, "view", "--uri", uri)
		if !errors.Is(err, errEmptyURI) {
			t.Errorf("expected errEmptyURI for %q, got %v", uri, err)
		}
		if stdout != "" {
			t.Errorf("expected no view for %q, got:\n%s", uri, stdout)
		}
	}
}
