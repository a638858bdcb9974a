// internal/cache/redis.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens a client for addr/db and pings it with a 5s timeout.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// RedisPresence keeps per-room liveness in a sorted set keyed room:{id}:seen,
// one member per client scored by the unix millis of its last touch.
// It implements rooms.Presence.
type RedisPresence struct {
	rdb *redis.Client
}

func NewRedisPresence(rdb *redis.Client) *RedisPresence {
	return &RedisPresence{rdb: rdb}
}

func seenKey(roomID uuid.UUID) string {
	return "room:" + roomID.String() + ":seen"
}

// Touch records clientID as seen at the given time.
func (p *RedisPresence) Touch(ctx context.Context, roomID uuid.UUID, clientID string, at time.Time) error {
	err := p.rdb.ZAdd(ctx, seenKey(roomID), redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: clientID,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to touch %s in room %s: %w", clientID, roomID, err)
	}
	return nil
}

// LastSeen returns the newest touch in the room; ok is false when nobody was ever seen.
func (p *RedisPresence) LastSeen(ctx context.Context, roomID uuid.UUID) (time.Time, bool, error) {
	res, err := p.rdb.ZRevRangeWithScores(ctx, seenKey(roomID), 0, 0).Result()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read presence of room %s: %w", roomID, err)
	}
	if len(res) == 0 {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(int64(res[0].Score)), true, nil
}

// Forget drops every liveness record of the room.
func (p *RedisPresence) Forget(ctx context.Context, roomID uuid.UUID) error {
	if err := p.rdb.Del(ctx, seenKey(roomID)).Err(); err != nil {
		return fmt.Errorf("failed to forget room %s: %w", roomID, err)
	}
	return nil
}
