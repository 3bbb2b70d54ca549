package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "data/fundwatch", config.Storage.Path)
	assert.Equal(t, 60*time.Second, config.Cache.GetQuoteTTL())
	assert.Equal(t, time.Hour, config.Cache.GetCatalogTTL())
	assert.Equal(t, 30*time.Second, config.Scheduler.GetQuoteInterval())
	assert.Equal(t, 5*time.Minute, config.Scheduler.GetSnapshotInterval())
	assert.Equal(t, 10*time.Second, config.Provider.GetTimeout())
	assert.False(t, config.IsProduction())
}

func TestLoadConfigMergesFiles(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	require.NoError(t, os.WriteFile(base, []byte(`
environment = "production"

[server]
port = 9090

[cache]
quote_ttl = "30s"
`), 0644))

	override := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(override, []byte(`
[server]
port = 9999
`), 0644))

	config, err := LoadConfig(base, override)
	require.NoError(t, err)

	assert.Equal(t, 9999, config.Server.Port) // later file wins
	assert.Equal(t, 30*time.Second, config.Cache.GetQuoteTTL())
	assert.True(t, config.IsProduction())
	// Untouched keys keep defaults.
	assert.Equal(t, "data/fundwatch", config.Storage.Path)
}

func TestLoadConfigSkipsMissingFiles(t *testing.T) {
	config, err := LoadConfig("/nonexistent/fundwatch.toml")
	require.NoError(t, err)
	assert.Equal(t, 8080, config.Server.Port)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("FUNDWATCH_PORT", "7070")
	t.Setenv("FUNDWATCH_LOG_LEVEL", "debug")
	t.Setenv("FUNDWATCH_DATA_PATH", "/tmp/fw")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "/tmp/fw", config.Storage.Path)
}

func TestDurationFallbacks(t *testing.T) {
	cache := CacheConfig{QuoteTTL: "bogus", CatalogTTL: ""}
	assert.Equal(t, 60*time.Second, cache.GetQuoteTTL())
	assert.Equal(t, time.Hour, cache.GetCatalogTTL())

	scheduler := SchedulerConfig{QuoteInterval: "nope"}
	assert.Equal(t, 30*time.Second, scheduler.GetQuoteInterval())
}
