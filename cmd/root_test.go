package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/warrenhq/warren/internal"
	"github.com/warrenhq/warren/testutil"
)

// runWarren executes the root command with args against the current
// WARREN_HOME, returning combined output.
func runWarren(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.Execute()
	return out.String(), err
}

// setHome isolates the test in a fresh warren home directory.
func setHome(t *testing.T) {
	t.Helper()
	t.Setenv("WARREN_HOME", t.TempDir())
}

// seedStore seeds the store under the current WARREN_HOME with one canvas.
func seedStore(t *testing.T, name string) *internal.Canvas {
	t.Helper()
	path, err := internal.ResolveDatabasePath("")
	if err != nil {
		t.Fatalf("Failed to resolve database path: %v", err)
	}
	store, err := internal.OpenStore(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()
	return testutil.SeedCanvas(t, internal.NewRepository(store), name)
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{
			name:    "version flag",
			args:    []string{"--version"},
			wantErr: false,
		},
		{
			name:    "help flag",
			args:    []string{"--help"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runWarren(t, "", tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("rootCmd.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	if _, err := runWarren(t, "", "nonexistent-command"); err == nil {
		t.Error("Execute() should return error for nonexistent command")
	}
}

func TestResolveAPIBase(t *testing.T) {
	apiBase = ""
	t.Setenv("WARREN_API", "")
	if got := resolveAPIBase(); got != defaultAPIBase {
		t.Errorf("resolveAPIBase() = %q, want the default", got)
	}

	t.Setenv("WARREN_API", "http://example.org/api")
	if got := resolveAPIBase(); got != "http://example.org/api" {
		t.Errorf("resolveAPIBase() = %q, want the env value", got)
	}

	apiBase = "http://flag.example.org"
	defer func() { apiBase = "" }()
	if got := resolveAPIBase(); got != "http://flag.example.org" {
		t.Errorf("resolveAPIBase() = %q, want the flag to win", got)
	}
}
