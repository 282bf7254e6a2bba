// Package cache is a read-through JSON cache for read-mostly catalog data.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/ikkim/foodgram-backend/internal/metrics"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "foodgram:catalog:"

// Cache stores JSON-encoded values under string keys.
type Cache interface {
	// GetJSON decodes the value at key into dst and reports whether it was
	// found.
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// ReadThrough returns the cached value at key, or calls load, stores its
// result and returns it. Cache failures are logged and never fail the call.
func ReadThrough[T any](ctx context.Context, c Cache, kind, key string, load func() (T, error)) (T, error) {
	var cached T
	found, err := c.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warn("Catalog cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	metrics.RecordCacheLookup(kind, found)
	if found {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if err := c.SetJSON(ctx, key, value); err != nil {
		logger.Warn("Catalog cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return value, nil
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a Cache backed by Redis with a fixed TTL per entry.
func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dst); err != nil {
		// a stale or foreign payload is treated as a miss
		return false, nil
	}
	return true, nil
}

func (c *redisCache) SetJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err()
}

func (c *redisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	logger.Debug("Invalidating catalog cache keys", map[string]interface{}{
		"prefix": prefix,
		"count":  len(keys),
	})
	return c.client.Del(ctx, keys...).Err()
}

type noopCache struct{}

// NewNoopCache returns a Cache that never stores anything. Used when Redis
// is disabled.
func NewNoopCache() Cache {
	return noopCache{}
}

func (noopCache) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }
func (noopCache) SetJSON(context.Context, string, interface{}) error         { return nil }
func (noopCache) DeletePrefix(context.Context, string) error                 { return nil }
