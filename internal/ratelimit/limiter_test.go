package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*RedisLimiter, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	l := NewRedisLimiter(client)
	l.now = func() time.Time { return now }
	return l, mr, &now
}

func TestRedisLimiter_SlidingWindow(t *testing.T) {
	l, _, now := newTestLimiter(t)
	ctx := context.Background()
	start := *now

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "user:7", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, 2-i, res.Remaining)
		*now = now.Add(time.Millisecond)
	}

	res, err := l.Allow(ctx, "user:7", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, time.Minute-3*time.Millisecond, res.RetryAfter)

	// The first two requests leave the window; the third still counts.
	*now = start.Add(time.Minute + time.Millisecond)
	res, err = l.Allow(ctx, "user:7", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
}

func TestRedisLimiter_KeysAreIndependent(t *testing.T) {
	l, mr, _ := newTestLimiter(t)
	ctx := context.Background()

	res, err := l.Allow(ctx, "guest:ip:1.1.1.1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = l.Allow(ctx, "guest:ip:1.1.1.1", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = l.Allow(ctx, "guest:ip:2.2.2.2", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	assert.True(t, mr.Exists("ratelimit:guest:ip:1.1.1.1"))
}

func TestRedisLimiter_FailsClosed(t *testing.T) {
	l, mr, _ := newTestLimiter(t)
	mr.Close()

	_, err := l.Allow(context.Background(), "user:1", 10, time.Minute)
	assert.Error(t, err)

	var unset *RedisLimiter
	_, err = unset.Allow(context.Background(), "user:1", 10, time.Minute)
	assert.Error(t, err)
}
