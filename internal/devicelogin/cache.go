package devicelogin

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "timekeeping:version"

// Cache wraps Redis based caching of dashboard row counts with versioning
// controls. All methods are nil-safe: without a client they fall through to
// the loader so the dashboard keeps working when Redis is absent.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// Count loads the row count for a scope through the cache. Cache failures are
// not fatal: the loader result is returned uncached instead.
func (c *Cache) Count(ctx context.Context, scope Scope, loader func(context.Context) (int, error)) (int, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	key, err := c.buildKey(ctx, scope)
	if err != nil {
		return loader(ctx)
	}
	cached, err := c.client.Get(ctx, key).Int()
	if err == nil {
		return cached, nil
	}
	total, loadErr := loader(ctx)
	if loadErr != nil {
		return 0, loadErr
	}
	if err == redis.Nil {
		_ = c.client.Set(ctx, key, total, c.ttl).Err()
	}
	return total, nil
}

// Warm primes the cached count for a scope regardless of what is stored.
func (c *Cache) Warm(ctx context.Context, scope Scope, total int) error {
	if c == nil || c.client == nil {
		return nil
	}
	key, err := c.buildKey(ctx, scope)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, total, c.ttl).Err()
}

// Bump invalidates every cached count by incrementing the global version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

func (c *Cache) buildKey(ctx context.Context, scope Scope) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("timekeeping:count:%s:%s", scope.Key(), strconv.FormatInt(ver, 10)), nil
}
