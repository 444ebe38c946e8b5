// Package cache is a JSON cache over Redis. Every method is a no-op on a
// Cache without a client, so callers never branch on whether Redis is up.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/kapee/pkg/logger"
	"github.com/shashiranjanraj/kapee/pkg/metrics"
)

// Connect creates a client for addr and verifies it with a ping.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return rdb, nil
}

// Cache namespaces keys under prefix. name labels the hit/miss metrics.
type Cache struct {
	rdb    redis.UniversalClient
	name   string
	prefix string
}

// New returns a cache over rdb; rdb may be nil.
func New(rdb redis.UniversalClient, name string) *Cache {
	return &Cache{rdb: rdb, name: name, prefix: "kapee:cache:" + name + ":"}
}

// Get unmarshals the value at key into dest and reports a hit.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.rdb == nil {
		return false
	}

	val, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.WithCtx(ctx).Warn("cache get failed", "cache", c.name, "error", err)
		}
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return false
	}

	if err := json.Unmarshal(val, dest); err != nil {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(c.name).Inc()
	return true
}

// Set stores value under key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Forget removes keys.
func (c *Cache) Forget(ctx context.Context, keys ...string) error {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	return c.rdb.Del(ctx, full...).Err()
}
