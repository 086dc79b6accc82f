package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".agentlisp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Missing File Uses Defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "file", cfg.Store)
		assert.Empty(t, cfg.LogLevel)
	})

	t.Run("Full Config", func(t *testing.T) {
		path := writeConfig(t, `
store: redis
log_level: debug
plain: true
redis:
  addr: localhost:6379
  db: 2
  ttl: 24h
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "redis", cfg.Store)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.True(t, cfg.Plain)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		assert.Equal(t, 2, cfg.Redis.DB)

		ttl, err := cfg.RedisTTL()
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, ttl)
	})

	t.Run("Unknown Keys Tolerated", func(t *testing.T) {
		path := writeConfig(t, "store: memory\nfuture_knob: 42\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "memory", cfg.Store)
	})

	t.Run("Invalid YAML", func(t *testing.T) {
		path := writeConfig(t, "store: [unclosed")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("Invalid TTL", func(t *testing.T) {
		cfg := Config{Redis: RedisConfig{TTL: "soon"}}
		_, err := cfg.RedisTTL()
		assert.ErrorContains(t, err, "invalid redis.ttl")
	})

	t.Run("Empty Store Falls Back To File", func(t *testing.T) {
		path := writeConfig(t, "log_level: warn\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "file", cfg.Store)
	})
}
