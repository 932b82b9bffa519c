package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type UserType string

const (
	UserTypeAdmin    UserType = "admin"
	UserTypeNonAdmin UserType = "non_admin"
)

const RoomsKey = "rooms"

func RoomUsersKey(roomID string, ut UserType) string {
	return "room:" + roomID + ":users:" + string(ut)
}

// Cache is a read-through helper over Redis. It never decides anything on its
// own: a miss or a Redis failure simply means the caller reads the store.
type Cache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func New(rdb redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// GetJSON decodes key into dst. It reports false on a miss, a decode error or
// an unreachable Redis.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("cache_get_failed")
		}
		metricCacheMisses.Inc()
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache_decode_failed")
		metricCacheMisses.Inc()
		return false
	}
	metricCacheHits.Inc()
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache_encode_failed")
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache_set_failed")
	}
}

// Invalidate drops keys. Failures are returned since a stale entry outliving
// a write is visible to readers until the TTL expires.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Aside returns the cached value for key or loads, stores and returns it.
func Aside[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	var v T
	if c != nil && c.GetJSON(ctx, key, &v) {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if c != nil {
		c.SetJSON(ctx, key, v)
	}
	return v, nil
}
