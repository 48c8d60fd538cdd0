package app

import (
	"strings"

	"github.com/fintrackhq/fintrack/internal/cache"
)

// RedisClientConfig converts the cache configuration into the store client's
// connection settings.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  strings.TrimSpace(c.Redis.Address),
		Username: strings.TrimSpace(c.Redis.Username),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		Timeout:  c.Redis.Timeout,
	}
}

// KeysConfig converts the cache configuration into the key registry settings.
func (c CacheConfig) KeysConfig() cache.KeysConfig {
	return cache.KeysConfig{
		Prefix: strings.TrimSpace(c.Prefix),
		TTLs:   c.RegionTTLs(),
	}
}
