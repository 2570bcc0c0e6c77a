// ABOUTME: Tests for root CLI command and global flags
// ABOUTME: Verifies command structure, subcommands, and flag handling
package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config and data lookups at a temp dir and returns a db path
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, env := range []string{"OPENAI_API_KEY", "CHARM_HOST", "CHARM_DB", "CHARM_AUTO_SYNC", "JARVIS_CHARM_ENABLED"} {
		t.Setenv(env, "")
	}
	t.Setenv("JARVIS_TASK_DELAY", "0s")
	return filepath.Join(dir, "jarvis.db")
}

// runCLI executes the root command against db and returns stdout
func runCLI(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	return runCLIWithInput(t, db, "", args...)
}

func runCLIWithInput(t *testing.T, db, input string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "jarvis", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Contains(t, cmd.Long, "███")
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	cmd := NewRootCmd()

	tests := []struct {
		flagName  string
		shorthand string
		defValue  string
	}{
		{"verbose", "v", "false"},
		{"quiet", "q", "false"},
		{"format", "", "auto"},
		{"config", "", ""},
		{"db", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(tt.flagName)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{
		"start", "ask", "search", "task", "routine", "prefs", "visitor",
		"history", "events", "export", "sync", "mcp", "version",
	} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRootCmd_MutuallyExclusiveFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectError bool
	}{
		{"verbose only", []string{"--verbose", "version"}, false},
		{"quiet only", []string{"--quiet", "version"}, false},
		{"both", []string{"--verbose", "--quiet", "version"}, true},
		{"bad format", []string{"--format", "xml", "version"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, isolate(t), tt.args...)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVersionCmd_Output(t *testing.T) {
	original := versionInfo
	defer func() { versionInfo = original }()

	SetVersion("1.2.3", "abc123", "2026-01-31")

	out, err := runCLI(t, isolate(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Jarvis 1.2.3")
	assert.Contains(t, out, "Commit: abc123")
	assert.Contains(t, out, "Built:  2026-01-31")

	out, err = runCLI(t, isolate(t), "--format", "json", "version")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "1.2.3"`)
}
