package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/fintrackhq/fintrack/internal/cache"
)

// Config represents the runtime configuration for the FinTrack backend.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Currency CurrencyConfig `mapstructure:"currency"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig describes the cache store, key namespace and per-region TTLs.
type CacheConfig struct {
	Prefix  string           `mapstructure:"prefix"`
	Redis   RedisCacheConfig `mapstructure:"redis"`
	TTL     TTLConfig        `mapstructure:"ttl"`
	Warming WarmingConfig    `mapstructure:"warming"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TTLConfig overrides per-region cache lifetimes.
type TTLConfig struct {
	Dashboard          time.Duration `mapstructure:"dashboard"`
	Categories         time.Duration `mapstructure:"categories"`
	Budgets            time.Duration `mapstructure:"budgets"`
	Goals              time.Duration `mapstructure:"goals"`
	MonthlyStats       time.Duration `mapstructure:"monthly_stats"`
	TransactionSummary time.Duration `mapstructure:"transaction_summary"`
	Reports            time.Duration `mapstructure:"reports"`
	Notifications      time.Duration `mapstructure:"notifications"`
	Currency           time.Duration `mapstructure:"currency"`
	UserProfile        time.Duration `mapstructure:"user_profile"`
}

// WarmingConfig controls the scheduled cache warming job.
type WarmingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
	MaxUsers int    `mapstructure:"max_users"`
}

// AuthConfig captures authentication settings.
type AuthConfig struct {
	JWT JWTSettings `mapstructure:"jwt"`
}

// JWTSettings configures JWT access tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl"`
}

// CurrencyConfig configures the upstream exchange rate provider.
type CurrencyConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("FINTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// RegionTTLs maps the configured overrides onto cache regions, dropping
// unset entries so the registry defaults apply.
func (c CacheConfig) RegionTTLs() map[cache.Region]time.Duration {
	overrides := map[cache.Region]time.Duration{
		cache.RegionDashboard:          c.TTL.Dashboard,
		cache.RegionCategories:         c.TTL.Categories,
		cache.RegionBudgets:            c.TTL.Budgets,
		cache.RegionGoals:              c.TTL.Goals,
		cache.RegionMonthlyStats:       c.TTL.MonthlyStats,
		cache.RegionTransactionSummary: c.TTL.TransactionSummary,
		cache.RegionReports:            c.TTL.Reports,
		cache.RegionNotifications:      c.TTL.Notifications,
		cache.RegionCurrency:           c.TTL.Currency,
		cache.RegionUserProfile:        c.TTL.UserProfile,
	}
	for region, ttl := range overrides {
		if ttl <= 0 {
			delete(overrides, region)
		}
	}
	return overrides
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/fintrack.sqlite")

	v.SetDefault("cache.prefix", cache.DefaultPrefix)
	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.timeout", "5s")

	v.SetDefault("cache.ttl.dashboard", "300s")
	v.SetDefault("cache.ttl.categories", "3600s")
	v.SetDefault("cache.ttl.budgets", "300s")
	v.SetDefault("cache.ttl.goals", "300s")
	v.SetDefault("cache.ttl.monthly_stats", "600s")
	v.SetDefault("cache.ttl.transaction_summary", "300s")
	v.SetDefault("cache.ttl.reports", "900s")
	v.SetDefault("cache.ttl.notifications", "120s")
	v.SetDefault("cache.ttl.currency", "24h")
	v.SetDefault("cache.ttl.user_profile", "1800s")

	v.SetDefault("cache.warming.enabled", true)
	v.SetDefault("cache.warming.schedule", "*/30 * * * *")
	v.SetDefault("cache.warming.max_users", 50)

	v.SetDefault("auth.jwt.issuer", "fintrack")
	v.SetDefault("auth.jwt.access_token_ttl", "24h")

	v.SetDefault("currency.base_url", "")
	v.SetDefault("currency.timeout", "10s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
