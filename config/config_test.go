package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so the host environment cannot
// leak into a test. t.Setenv restores the originals afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "APP_NAME", "APP_DEBUG", "APP_VERSION", "APP_SHUTDOWN_TIMEOUT",
		"HTTP_HOST", "HTTP_PORT", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT", "HTTP_MAX_BODY_BYTES",
		"REDIS_URL", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
		"REDIS_MIN_IDLE_CONNS", "REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
		"REDIS_NAMESPACE", "REDIS_DISABLED",
		"REPORTS_CACHE_TTL", "REPORTS_WARMUP_INTERVAL", "EVENTS_ASYNC", "EVENTS_WORKER_POOL_SIZE",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "gradebook", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, "gradebook:", cfg.Redis.Namespace)
	assert.False(t, cfg.Redis.Disabled)
	assert.Equal(t, 10*time.Minute, cfg.Reports.CacheTTL)
	assert.Equal(t, time.Minute, cfg.Reports.WarmupInterval)
	assert.True(t, cfg.Events.Async)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("REDIS_DISABLED", "true")
	t.Setenv("REPORTS_CACHE_TTL", "30s")
	t.Setenv("REPORTS_WARMUP_INTERVAL", "0s")
	t.Setenv("EVENTS_ASYNC", "false")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Disabled)
	assert.Equal(t, 30*time.Second, cfg.Reports.CacheTTL)
	assert.Zero(t, cfg.Reports.WarmupInterval)
	assert.False(t, cfg.Events.Async)
}

func TestLoad_DotEnvFileDoesNotOverrideProcessEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_PORT=7070\nAPP_NAME=from-file\n"), 0o600))
	t.Setenv("APP_NAME", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.HTTP.Port)
	assert.Equal(t, "from-env", cfg.App.Name)
}

func TestLoad_InvalidValuesAreReportedTogether(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "qa")
	t.Setenv("HTTP_PORT", "70000")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load(missingEnvFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_ENV")
	assert.Contains(t, err.Error(), "HTTP_PORT")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")

	assert.Equal(t, 5, getEnvInt("X_INT", 5))
	assert.True(t, getEnvBool("X_BOOL", true))
	assert.Equal(t, time.Second, getEnvDuration("X_DUR", time.Second))
}
