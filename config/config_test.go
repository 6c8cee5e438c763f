package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "", cfg.DatabaseDriver)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 3*time.Second, cfg.SolveTimeLimit)
	assert.Equal(t, ".optimizer-audit", cfg.AuditDir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPTIMIZER_SERVER_PORT", "9090")
	t.Setenv("OPTIMIZER_CACHE_TTL", "30s")
	t.Setenv("OPTIMIZER_DATABASE_DRIVER", "sqlite")
	t.Setenv("OPTIMIZER_DATABASE_DSN", "file::memory:")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("OPTIMIZER_DATABASE_DRIVER", "mysql")
	t.Setenv("OPTIMIZER_DATABASE_DSN", "whatever")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestLoadRequiresDSNWithDriver(t *testing.T) {
	t.Setenv("OPTIMIZER_DATABASE_DRIVER", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_dsn")
}

func TestLoadRejectsNonPositiveTimeLimit(t *testing.T) {
	t.Setenv("OPTIMIZER_SOLVE_TIME_LIMIT", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "solve_time_limit")
}
