package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "data/crafting.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "crafting:", cfg.Storage.Redis.KeyPrefix)
	assert.Equal(t, 25, cfg.Catalog.SearchLimit)
	assert.Equal(t, 256, cfg.Catalog.CacheSize)
	assert.Equal(t, 2, cfg.Professions.MaxPerUser)
	assert.False(t, cfg.Crafting.EnforceTiers)
	assert.Equal(t, 30*time.Second, cfg.Scrape.Timeout)
	assert.Equal(t, "table tr", cfg.Scrape.RowSelector)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  backend: file
  dir: /var/lib/crafting
professions:
  max_per_user: 3
  aliases:
    smith: Weapon Smithing
scrape:
  urls:
    - https://wiki.example/recipes
  timeout: 5s
`), 0o644))

	t.Setenv("CRAFTING_CRAFTING_ENFORCE_TIERS", "true")
	t.Setenv("CRAFTING_STORAGE_DIR", "/srv/crafting")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "/srv/crafting", cfg.Storage.Dir, "env overrides the file")
	assert.Equal(t, 3, cfg.Professions.MaxPerUser)
	assert.Equal(t, map[string]string{"smith": "Weapon Smithing"}, cfg.Professions.Aliases)
	assert.True(t, cfg.Crafting.EnforceTiers)
	assert.Equal(t, []string{"https://wiki.example/recipes"}, cfg.Scrape.URLs)
	assert.Equal(t, 5*time.Second, cfg.Scrape.Timeout)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
