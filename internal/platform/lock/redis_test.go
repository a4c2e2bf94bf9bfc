package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) *RedisLocker {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	l, err := NewRedis(context.Background(), addr, os.Getenv("TEST_REDIS_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRedisLockerExcludesSecondHolder(t *testing.T) {
	l := newTestLocker(t)
	ctx := context.Background()
	key := "hrperf:test:" + uuid.NewString()

	unlock, ok, err := l.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, unlock(ctx))

	unlock, ok, err = l.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, unlock(ctx))
}

func TestRedisLockerReleaseKeepsForeignToken(t *testing.T) {
	l := newTestLocker(t)
	ctx := context.Background()
	key := "hrperf:test:" + uuid.NewString()

	unlock, ok, err := l.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.rdb.Set(ctx, key, "someone-else", time.Minute).Err())
	require.NoError(t, unlock(ctx))

	val, err := l.rdb.Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
	require.NoError(t, l.rdb.Del(ctx, key).Err())
}

func TestNewRedisFailsOnUnreachableAddr(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedis(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
}
