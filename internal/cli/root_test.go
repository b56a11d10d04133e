package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/portsql/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	cfgFile, targetFlag = "", ""

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{"version", "translate", "tokens", "query", "exec", "ping", "shell",
		"dialects", "macros", "migrate", "constants", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	root := NewRootCmd()
	for _, flag := range []string{"config", "target", "type", "database", "dialect", "param-style",
		"cache-size", "macros-dir", "constants", "state", "setting", "log-level", "verbose", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRootCommand_TranslateWithFlags(t *testing.T) {
	out, err := execute(t, "translate", "--type", "sqlite", "--dialect", "postgres", "-o", "plain",
		"SELECT :a, :b, :a")
	require.NoError(t, err)
	assert.Contains(t, out, "$1")
	assert.Contains(t, out, "$2")
}

func TestRootCommand_SettingFlag(t *testing.T) {
	out, err := execute(t, "translate", "--type", "sqlite", "-o", "plain",
		"--setting", "site=ok", "SELECT [:get_config var=site]")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT 'ok'")
}

func TestRootCommand_UnknownTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portsql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target:\n  type: sqlite\ntargets:\n  dev:\n    database: dev.db\n"), 0600))

	_, err := execute(t, "--config", path, "--target", "prod", "dialects")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown target "prod"`)
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "dialects")
	require.Error(t, err)
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "portsql")
}
