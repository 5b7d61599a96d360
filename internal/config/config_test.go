package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default("myproject")

	assert.Equal(t, "myproject", cfg.Project.Name)
	assert.Equal(t, "ch", cfg.Project.IDPrefix)
	assert.Equal(t, 2, cfg.Project.DefaultPriority)
}

func TestLoadFromMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proj", ".chisel", "config.toml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "proj", cfg.Project.Name)
	assert.Equal(t, "ch", cfg.Project.IDPrefix)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".chisel", "config.toml")

	cfg := Default("api-server")
	cfg.Project.IDPrefix = "api"
	cfg.Project.DefaultPriority = 1
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "api-server", loaded.Project.Name)
	assert.Equal(t, "api", loaded.Project.IDPrefix)
	assert.Equal(t, 1, loaded.Project.DefaultPriority)
}

func TestLoadFromEmptyPrefixDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[project]\nname = \"x\"\n"), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "ch", cfg.Project.IDPrefix)
}

func TestLoadFromMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0644))

	_, err := LoadFrom(path)
	require.Error(t, err)
}
