package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPresence(t *testing.T) *RedisPresence {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb, err := ConnectRedis(context.Background(), addr, 0)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return NewRedisPresence(rdb)
}

func TestRedisPresence(t *testing.T) {
	p := newPresence(t)
	ctx := context.Background()
	roomID := uuid.New()
	t.Cleanup(func() { p.Forget(ctx, roomID) })

	_, ok, err := p.LastSeen(ctx, roomID)
	require.NoError(t, err)
	assert.False(t, ok)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.Touch(ctx, roomID, "p1", base))
	require.NoError(t, p.Touch(ctx, roomID, "p2", base.Add(time.Minute)))
	require.NoError(t, p.Touch(ctx, roomID, "p1", base.Add(30*time.Second)))

	seen, ok, err := p.LastSeen(ctx, roomID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, seen.Equal(base.Add(time.Minute)), "got %v", seen)

	require.NoError(t, p.Forget(ctx, roomID))
	_, ok, err = p.LastSeen(ctx, roomID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConnectRedisFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := ConnectRedis(ctx, "127.0.0.1:1", 0)
	assert.Error(t, err)
}
