package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabasePathFlagWins(t *testing.T) {
	t.Setenv("INVCTL_DB", "env.db")

	path, err := DatabasePath("flag.db", "")
	require.NoError(t, err)
	assert.Equal(t, "flag.db", path)
}

func TestDatabasePathEnvBeatsConfig(t *testing.T) {
	t.Setenv("INVCTL_DB", "env.db")
	t.Setenv("INVCTL_CONFIG", "")

	cfgPath := writeConfig(t, "database:\n  path: file.db\n")

	path, err := DatabasePath("", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "env.db", path)
}

func TestDatabasePathFromConfigFile(t *testing.T) {
	t.Setenv("INVCTL_DB", "")

	cfgPath := writeConfig(t, "database:\n  path: file.db\n")

	path, err := DatabasePath("", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "file.db", path)
}

func TestDatabasePathEnvConfigLocation(t *testing.T) {
	t.Setenv("INVCTL_DB", "")
	cfgPath := writeConfig(t, "database:\n  path: located.db\n")
	t.Setenv("INVCTL_CONFIG", cfgPath)

	path, err := DatabasePath("", "")
	require.NoError(t, err)
	assert.Equal(t, "located.db", path)
}

func TestDatabasePathDefault(t *testing.T) {
	t.Setenv("INVCTL_DB", "")
	t.Setenv("INVCTL_CONFIG", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir())) // no invctl.yaml here
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	path, err := DatabasePath("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultDatabasePath, path)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	cfgPath := writeConfig(t, "database: [broken\n")

	_, err := Load(cfgPath)
	assert.Error(t, err)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
