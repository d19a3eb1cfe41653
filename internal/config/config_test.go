package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.Catalog.BaseURL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigAppliesEnvOverrides(t *testing.T) {
	t.Setenv("SHAFLIX_PORT", "9191")
	t.Setenv("TMDB_API_KEY", "env-key")
	t.Setenv("SHAFLIX_READ_TIMEOUT", "45s")

	cm := NewConfigManager()
	require.NoError(t, cm.LoadConfig(""))

	cfg := cm.GetConfig()
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.Catalog.APIKey)
	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadConfigFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shaflix.yaml")
	content := `
server:
  port: 9000
database:
  type: sqlite
  data_dir: ` + dir + `
catalog:
  base_url: https://catalog.example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cm := NewConfigManager()
	require.NoError(t, cm.LoadConfig(path))

	cfg := cm.GetConfig()
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "https://catalog.example.com", cfg.Catalog.BaseURL)
	// sqlite path is derived from the data dir
	assert.Equal(t, filepath.Join(dir, "shaflix.db"), cfg.Database.DatabasePath)
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	t.Setenv("SHAFLIX_PORT", "99999")

	cm := NewConfigManager()
	assert.Error(t, cm.LoadConfig(""))
}

func TestLoadConfigRejectsUnknownDatabaseType(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "oracle")

	cm := NewConfigManager()
	assert.Error(t, cm.LoadConfig(""))
}

func TestGetConfigReturnsCopy(t *testing.T) {
	cm := NewConfigManager()
	require.NoError(t, cm.LoadConfig(""))

	first := cm.GetConfig()
	first.Server.Port = 1

	second := cm.GetConfig()
	assert.NotEqual(t, 1, second.Server.Port)
}
