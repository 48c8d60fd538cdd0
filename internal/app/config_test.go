package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fintrackhq/fintrack/internal/cache"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)

	require.Equal(t, cache.DefaultPrefix, cfg.Cache.Prefix)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "127.0.0.1:6379", cfg.Cache.Redis.Address)
	require.Equal(t, 5*time.Second, cfg.Cache.Redis.Timeout)

	require.Equal(t, 5*time.Minute, cfg.Cache.TTL.Dashboard)
	require.Equal(t, time.Hour, cfg.Cache.TTL.Categories)
	require.Equal(t, 10*time.Minute, cfg.Cache.TTL.MonthlyStats)
	require.Equal(t, 2*time.Minute, cfg.Cache.TTL.Notifications)
	require.Equal(t, 24*time.Hour, cfg.Cache.TTL.Currency)
	require.Equal(t, 30*time.Minute, cfg.Cache.TTL.UserProfile)

	require.True(t, cfg.Cache.Warming.Enabled)
	require.Equal(t, "*/30 * * * *", cfg.Cache.Warming.Schedule)
	require.Equal(t, 50, cfg.Cache.Warming.MaxUsers)

	require.Equal(t, "fintrack", cfg.Auth.JWT.Issuer)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWT.TTL)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("FINTRACK_SERVER_PORT", "9090")
	t.Setenv("FINTRACK_CACHE_PREFIX", "ft_test_")
	t.Setenv("FINTRACK_CACHE_TTL_DASHBOARD", "30s")
	t.Setenv("FINTRACK_CACHE_WARMING_ENABLED", "false")
	t.Setenv("FINTRACK_AUTH_JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "ft_test_", cfg.Cache.Prefix)
	require.Equal(t, 30*time.Second, cfg.Cache.TTL.Dashboard)
	require.False(t, cfg.Cache.Warming.Enabled)
	require.Equal(t, "test-secret", cfg.Auth.JWT.Secret)
}

func TestRegionTTLsDropsUnsetEntries(t *testing.T) {
	cfg := CacheConfig{}
	cfg.TTL.Dashboard = time.Minute
	cfg.TTL.Currency = -time.Hour

	ttls := cfg.RegionTTLs()
	require.Len(t, ttls, 1)
	require.Equal(t, time.Minute, ttls[cache.RegionDashboard])
}

func TestKeysConfigCarriesPrefixAndTTLs(t *testing.T) {
	cfg := CacheConfig{Prefix: "ft_"}
	cfg.TTL.Notifications = 45 * time.Second

	keysCfg := cfg.KeysConfig()
	require.Equal(t, "ft_", keysCfg.Prefix)
	require.Equal(t, 45*time.Second, keysCfg.TTLs[cache.RegionNotifications])
}
