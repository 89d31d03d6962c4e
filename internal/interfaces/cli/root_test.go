package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBuild = BuildInfo{Version: "1.2.3", Commit: "abc123", BuildDate: "2024-01-01"}

// writeConfig writes a config file into a fresh directory and returns its path.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "antecedent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"+body), 0o644))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(testBuild)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand(testBuild)
	assert.Equal(t, "antecedent", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Contains(t, cmd.Version, "1.2.3")

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"analyze", "redact", "preprocess", "status", "serve", "migrate", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand(testBuild)
	for _, name := range []string{"config", "log-level", "output", "verbose", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing flag %s", name)
	}
	assert.Equal(t, "c", cmd.PersistentFlags().Lookup("config").Shorthand)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "--config", writeConfig(t, ""), "version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2024-01-01)\n", out)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "version")
	assert.Error(t, err)
}

func TestAnalyze_RequiresBaselineWindow(t *testing.T) {
	_, err := execute(t, "--config", writeConfig(t, ""), "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseline_window_years")
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"A", "LONG"}, [][]string{{"xyz", "1"}, {"q"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "A    LONG", lines[0])
	assert.Equal(t, "---  ----", lines[1])
	assert.Equal(t, "xyz  1   ", lines[2])
	assert.Equal(t, "", FormatTable(nil, nil))
}

//Personal.AI order the ending
