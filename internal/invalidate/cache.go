package invalidate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the read-through cache the seat-availability listing consults
// before hitting the database. Adapted from the response cache in
// middleware/cache.go, narrowed from "cache any HTTP response" to "cache one
// JSON-shaped availability snapshot keyed by event", since that's the only
// read path hot enough to need it.
type Cache interface {
	Get(ctx context.Context, eventID uint64, dest interface{}) (bool, error)
	Set(ctx context.Context, eventID uint64, value interface{}) error
	Invalidate(ctx context.Context, eventID uint64) error
}

// RedisCache is the Cache backed by Redis, built the same way the HTTP
// response cache middleware stores payloads: encode on write, decode on
// read, skip silently on any Redis error rather than fail the request.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache returns a Cache storing keys under prefix with the given
// TTL. A zero ttl defaults to 30 seconds, short enough that even a missed
// invalidation self-heals quickly.
func NewRedisCache(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(eventID uint64) string {
	return fmt.Sprintf("%s:%d", c.prefix, eventID)
}

// Get reports whether a cached snapshot for eventID exists and, if so,
// decodes it into dest. A Redis error is treated as a cache miss.
func (c *RedisCache) Get(ctx context.Context, eventID uint64, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(eventID)).Bytes()
	if err != nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, nil
	}
	return true, nil
}

// Set stores value for eventID with the cache's configured TTL.
func (c *RedisCache) Set(ctx context.Context, eventID uint64, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.SetEx(ctx, c.key(eventID), raw, c.ttl).Err()
}

// Invalidate drops any cached snapshot for eventID. Called by the
// invalidation worker on receipt of a SeatAvailabilityChanged event.
func (c *RedisCache) Invalidate(ctx context.Context, eventID uint64) error {
	return c.rdb.Del(ctx, c.key(eventID)).Err()
}
