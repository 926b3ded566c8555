package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versely/versely/internal/domain/entities"
)

func TestCreateDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	loader := NewTOMLLoader()
	require.NoError(t, loader.CreateDefaults(context.Background(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[server]")
	assert.Contains(t, string(data), "port = 9090")
}

func TestLoadLocal(t *testing.T) {
	dir := t.TempDir()
	loader := NewTOMLLoader()

	t.Run("missing local config is not an error", func(t *testing.T) {
		cfg, err := loader.LoadLocal(context.Background(), dir)
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("loads and validates", func(t *testing.T) {
		content := `
[server]
port = 4000

[editor]
debounce_ms = 300
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "versely.toml"), []byte(content), 0600))

		cfg, err := loader.LoadLocal(context.Background(), dir)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, 4000, cfg.Server.Port)
		assert.Equal(t, 300, cfg.Editor.DebounceMs)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		bad := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(bad, "versely.toml"),
			[]byte("[server]\nport = 99999\n"), 0600))

		_, err := loader.LoadLocal(context.Background(), bad)
		assert.Error(t, err)
	})
}

func TestMerge(t *testing.T) {
	merger := NewConfigMerger()

	t.Run("no configs yields defaults", func(t *testing.T) {
		cfg := merger.Merge()
		assert.Equal(t, 9090, cfg.Server.Port)
	})

	t.Run("later config wins", func(t *testing.T) {
		base := GetDefaultConfig()
		local := &entities.Config{
			Server:  entities.ServerConfig{Port: 4000},
			Storage: entities.StorageConfig{RemoteURL: "http://hub:9090"},
		}

		merged := merger.Merge(base, local)
		assert.Equal(t, 4000, merged.Server.Port)
		assert.Equal(t, "localhost", merged.Server.Host)
		assert.Equal(t, "http://hub:9090", merged.Storage.RemoteURL)
	})

	t.Run("nil configs are skipped", func(t *testing.T) {
		base := GetDefaultConfig()
		merged := merger.Merge(base, nil)
		assert.Equal(t, base.Server.Port, merged.Server.Port)
	})

	t.Run("merge does not mutate inputs", func(t *testing.T) {
		base := GetDefaultConfig()
		local := &entities.Config{Server: entities.ServerConfig{Port: 4000}}

		_ = merger.Merge(base, local)
		assert.Equal(t, 9090, base.Server.Port)
	})
}

func TestApplyFlags(t *testing.T) {
	merger := NewConfigMerger()
	base := GetDefaultConfig()

	result := merger.ApplyFlags(base, map[string]interface{}{
		"port":    4000,
		"host":    "0.0.0.0",
		"remote":  "http://hub:9090",
		"verbose": true,
	})

	assert.Equal(t, 4000, result.Server.Port)
	assert.Equal(t, "0.0.0.0", result.Server.Host)
	assert.Equal(t, "http://hub:9090", result.Storage.RemoteURL)
	assert.True(t, result.Logging.Verbose)
	assert.Equal(t, string(entities.LogLevelDebug), result.Logging.Level)

	// base untouched
	assert.Equal(t, 9090, base.Server.Port)
}

func TestApplyEnvVars(t *testing.T) {
	merger := NewConfigMerger()

	t.Setenv("VERSELY_PORT", "5000")
	t.Setenv("VERSELY_DB", "/tmp/library.db")
	t.Setenv("VERSELY_LOG_LEVEL", "debug")

	result := merger.ApplyEnvVars(GetDefaultConfig())

	assert.Equal(t, 5000, result.Server.Port)
	assert.Equal(t, "/tmp/library.db", result.Storage.Path)
	assert.Equal(t, "debug", result.Logging.Level)
}
