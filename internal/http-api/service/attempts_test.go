package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisLimiter(t *testing.T, max int, window time.Duration) (*miniredis.Miniredis, AttemptLimiter) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisAttemptLimiter(client, max, window)
}

func TestRedisAttemptLimiter_BlocksAfterMax(t *testing.T) {
	ctx := context.Background()
	_, limiter := newMiniredisLimiter(t, 2, time.Minute)

	ok, err := limiter.Allow(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, limiter.Fail(ctx, "a@example.com"))
	ok, _ = limiter.Allow(ctx, "a@example.com")
	assert.True(t, ok)

	require.NoError(t, limiter.Fail(ctx, "a@example.com"))
	ok, _ = limiter.Allow(ctx, "a@example.com")
	assert.False(t, ok)

	ok, _ = limiter.Allow(ctx, "b@example.com")
	assert.True(t, ok, "keys are independent")
}

func TestRedisAttemptLimiter_WindowExpires(t *testing.T) {
	ctx := context.Background()
	mr, limiter := newMiniredisLimiter(t, 1, 15*time.Minute)

	require.NoError(t, limiter.Fail(ctx, "a@example.com"))
	ok, _ := limiter.Allow(ctx, "a@example.com")
	assert.False(t, ok)

	ttl := mr.TTL(attemptsKey("a@example.com"))
	assert.Equal(t, 15*time.Minute, ttl)

	mr.FastForward(16 * time.Minute)
	ok, _ = limiter.Allow(ctx, "a@example.com")
	assert.True(t, ok)
}

func TestRedisAttemptLimiter_Reset(t *testing.T) {
	ctx := context.Background()
	_, limiter := newMiniredisLimiter(t, 1, time.Minute)

	require.NoError(t, limiter.Fail(ctx, "a@example.com"))
	require.NoError(t, limiter.Reset(ctx, "a@example.com"))

	ok, err := limiter.Allow(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisAttemptLimiter_ReportsRedisErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	limiter := NewRedisAttemptLimiter(client, 1, time.Minute)

	ok, err := limiter.Allow(ctx, "a@example.com")
	assert.Error(t, err)
	assert.True(t, ok)
}
