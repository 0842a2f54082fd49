package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	for _, key := range []string{
		"MERGE_STRUCTURE_SQL_DRIVER",
		"MERGE_STRUCTURE_SQL_PATTERN",
		"MERGE_STRUCTURE_SQL_GIT",
		"MERGE_STRUCTURE_SQL_VERBOSE",
	} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
	return xdg
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	xdg := isolate(t)
	dir := filepath.Join(xdg, appName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("driver_name: structure-merge\nfile_pattern: db/*.sql\nverbose: true\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "structure-merge", cfg.DriverName)
	assert.Equal(t, "db/*.sql", cfg.FilePattern)
	assert.Equal(t, "git", cfg.Git)
	assert.True(t, cfg.Verbose)
}

func TestLoadMalformedYAML(t *testing.T) {
	xdg := isolate(t)
	dir := filepath.Join(xdg, appName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("driver_name: [\n"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestEnvOverridesYAML(t *testing.T) {
	xdg := isolate(t)
	dir := filepath.Join(xdg, appName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("git: /usr/bin/git\n"), 0o644))
	t.Setenv("MERGE_STRUCTURE_SQL_GIT", "/opt/git/bin/git")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/git/bin/git", cfg.Git)
}

func TestInvalidVerboseEnv(t *testing.T) {
	isolate(t)
	t.Setenv("MERGE_STRUCTURE_SQL_VERBOSE", "loud")

	_, err := Load()
	assert.Error(t, err)
}

func TestDotEnvLocal(t *testing.T) {
	isolate(t)
	root, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env.local"),
		[]byte("MERGE_STRUCTURE_SQL_PATTERN=schema.sql\n"), 0o644))
	sub := filepath.Join(root, "db")
	require.NoError(t, os.Mkdir(sub, 0o755))
	t.Chdir(sub)
	// godotenv.Load does not override variables that are already set.
	os.Unsetenv("MERGE_STRUCTURE_SQL_PATTERN")
	t.Cleanup(func() { os.Unsetenv("MERGE_STRUCTURE_SQL_PATTERN") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "schema.sql", cfg.FilePattern)
}
