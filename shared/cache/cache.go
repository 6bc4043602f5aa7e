package cache

import (
	"context"
	"time"
)

// Cache is a derived-data cache with on-write invalidation. Values are opaque
// serialized bytes; the cache never owns data and may be flushed at any time.
type Cache interface {
	// GetOrPopulate returns the cached value for key. On a miss it calls
	// populate, stores the result with the given TTL, and returns it.
	GetOrPopulate(ctx context.Context, key string, ttl time.Duration, populate func() ([]byte, error)) ([]byte, error)

	// Invalidate removes key unconditionally. Removing an absent key is not
	// an error.
	Invalidate(ctx context.Context, key string) error
}

var _ Cache = (*NopCache)(nil)

// NopCache always misses. Used when no cache backend is configured.
type NopCache struct{}

func NewNopCache() *NopCache {
	return &NopCache{}
}

func (c *NopCache) GetOrPopulate(ctx context.Context, key string, ttl time.Duration, populate func() ([]byte, error)) ([]byte, error) {
	return populate()
}

func (c *NopCache) Invalidate(ctx context.Context, key string) error {
	return nil
}
