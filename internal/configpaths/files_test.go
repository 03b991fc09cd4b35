package configpaths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReversedGames/dosbox-staging/internal/configpaths"
)

func TestDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("AppData", dir)

	p, err := configpaths.DefaultNamedConfigPath("serve", "yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dosmouse", "serve.yaml"), p)

	p, err = configpaths.DefaultConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dosmouse", "config.json"), p)
}

func TestConfigCandidatePaths(t *testing.T) {
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths("/tmp/mine.toml")
	require.NotEmpty(t, tomlPaths)
	assert.Equal(t, "/tmp/mine.toml", tomlPaths[0])
	assert.NotContains(t, jsonPaths, "/tmp/mine.toml")
	assert.NotEmpty(t, yamlPaths)
}

func TestFindResource(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("AppData", dir)

	scripts := filepath.Join(dir, "dosmouse", "scripts")
	require.NoError(t, os.MkdirAll(scripts, 0o755))
	want := filepath.Join(scripts, "click.yaml")
	require.NoError(t, os.WriteFile(want, []byte("steps: []\n"), 0o644))

	assert.Contains(t, configpaths.ResourcePaths("scripts"), scripts)

	got, err := configpaths.FindResource("scripts", "click.yaml")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = configpaths.FindResource("scripts", want)
	require.NoError(t, err)
	assert.Equal(t, want, got, "existing paths are returned unchanged")

	_, err = configpaths.FindResource("scripts", "nope.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
