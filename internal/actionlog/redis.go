package actionlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLog keeps each room's log in a Redis list at room:{id}:actions.
type RedisLog struct {
	rdb redis.UniversalClient
}

func NewRedisLog(rdb redis.UniversalClient) *RedisLog {
	return &RedisLog{rdb: rdb}
}

// Append pushes every record with a single RPUSH, which Redis applies
// atomically.
func (l *RedisLog) Append(ctx context.Context, roomID string, recs ...Record) error {
	if len(recs) == 0 {
		return nil
	}
	vals := make([]any, 0, len(recs))
	for _, rec := range recs {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		vals = append(vals, b)
	}
	if err := l.rdb.RPush(ctx, roomKey(roomID), vals...).Err(); err != nil {
		return fmt.Errorf("append action: %w", err)
	}
	return nil
}

func (l *RedisLog) Fetch(ctx context.Context, roomID string, includeInternal bool) ([]Record, error) {
	raw, err := l.rdb.LRange(ctx, roomKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch actions: %w", err)
	}
	out := make([]Record, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode action: %w", err)
		}
		out = append(out, rec)
	}
	return filterInternal(out, includeInternal), nil
}

func (l *RedisLog) Clear(ctx context.Context, roomID string) error {
	if err := l.rdb.Del(ctx, roomKey(roomID)).Err(); err != nil {
		return fmt.Errorf("clear actions: %w", err)
	}
	return nil
}
