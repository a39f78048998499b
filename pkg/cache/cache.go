package cache

import (
	"context"
	"time"
)

// Cache is a JSON value cache with per-key TTL.
type Cache interface {
	// Get unmarshals the cached value into dest. It reports false on a miss,
	// in which case dest is left untouched.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Ping checks connectivity to the backing store.
	Ping(ctx context.Context) error
}
