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
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.PlanTTL)
	assert.Equal(t, 2*time.Minute, cfg.Cache.ValidationTTL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.AnalyticsTTL)
	assert.Equal(t, int64(100), cfg.Cache.ScanBatchSize)
	assert.Equal(t, "USD", cfg.Billing.DefaultCurrency)
	assert.Zero(t, cfg.Billing.SweepInterval)
	assert.Equal(t, 20, cfg.RateLimit.PromoPerMinute)
	assert.Equal(t, 200, cfg.RateLimit.PromoPerHour)
	assert.Same(t, cfg, Get())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("database:\n  driver: sqlite\n  path: /tmp/test.db\ncache:\n  backend: memory\n  promo_ttl: 30s\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("BILLING_CACHE_VALIDATION_TTL", "45s")

	cfg, err := Load("release", dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Cache.PromoTTL)
	assert.Equal(t, 45*time.Second, cfg.Cache.ValidationTTL)
	assert.Equal(t, "release", cfg.Server.Mode)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("BILLING_CACHE_BACKEND", "memcached")
	_, err := Load("", t.TempDir())
	assert.Error(t, err)
}
