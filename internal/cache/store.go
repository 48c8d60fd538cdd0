package cache

import (
	"context"
	"time"
)

// Store represents a shared TTL key/value cache used across the application.
// Implementations must treat deletes of absent keys as a no-op and report
// expired entries as absent.
type Store interface {
	Has(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// FlushAll drops every entry regardless of owner. Intended for
	// full-application cache resets from maintenance tooling only.
	FlushAll(ctx context.Context) error
}
