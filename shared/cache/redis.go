package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var _ Cache = (*RedisCache)(nil)

// RedisCache implements Cache on a redis instance. Read errors degrade to a
// miss so a flaky cache slows reads down instead of failing them; write
// errors on populate are logged and ignored for the same reason.
// Invalidation errors are returned: a skipped invalidation would serve stale
// data for up to a full TTL.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// NewRedisCacheFromAddr dials addr and verifies the connection.
func NewRedisCacheFromAddr(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return NewRedisCache(client), nil
}

func (c *RedisCache) GetOrPopulate(ctx context.Context, key string, ttl time.Duration, populate func() ([]byte, error)) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
	}

	val, err = populate()
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, key, val, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to store cache entry")
	}

	return val, nil
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache key %s: %w", key, err)
	}
	return nil
}
