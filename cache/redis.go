package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sebitommy123/sa/wire"
)

// RedisCache is a Cache backed by Redis, for sharing provider payloads
// across processes. Grounded on registry/service.go's direct *redis.Client
// field (no ORM layer between the service and go-redis) and
// registry/registry.go's constructor-injected client.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithKeyPrefix namespaces every key this cache reads or writes.
func WithKeyPrefix(prefix string) RedisOption {
	return func(c *RedisCache) { c.prefix = prefix }
}

// NewRedisCache wraps an already-constructed *redis.Client.
func NewRedisCache(rdb *redis.Client, opts ...RedisOption) *RedisCache {
	c := &RedisCache{rdb: rdb, prefix: "sa:payload:"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Cache = (*RedisCache)(nil)

func (c *RedisCache) fullKey(key string) string { return c.prefix + key }

// Get retrieves cached objects by key. Returns nil, nil on a cache miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]wire.RawObject, error) {
	raw, err := c.rdb.Get(ctx, c.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis cache get %q: %w", key, err)
	}
	objects, err := wire.DecodeRawObjects(raw)
	if err != nil {
		return nil, fmt.Errorf("redis cache decode %q: %w", key, err)
	}
	return objects, nil
}

// Set stores objects with the given TTL. Objects are re-encoded through
// RawObject.Encode into the canonical wire array shape rather than Go's
// default struct marshaling, so a value written here round-trips through
// any other wire.DecodeRawObjects caller unchanged.
func (c *RedisCache) Set(ctx context.Context, key string, objects []wire.RawObject, ttl time.Duration) error {
	raw, err := encodeRawObjects(objects)
	if err != nil {
		return fmt.Errorf("redis cache encode %q: %w", key, err)
	}
	if err := c.rdb.Set(ctx, c.fullKey(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis cache set %q: %w", key, err)
	}
	return nil
}

// Delete removes a cached entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.fullKey(key)).Err(); err != nil {
		return fmt.Errorf("redis cache delete %q: %w", key, err)
	}
	return nil
}

// encodeRawObjects serializes objects into the canonical wire JSON array
// shape (each object re-attaching its reserved __id__/__types__/__source__
// keys via RawObject.Encode).
func encodeRawObjects(objects []wire.RawObject) ([]byte, error) {
	parts := make([]json.RawMessage, len(objects))
	for i, obj := range objects {
		encoded, err := obj.Encode()
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		parts[i] = encoded
	}
	return json.Marshal(parts)
}
