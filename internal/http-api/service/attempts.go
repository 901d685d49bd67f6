package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter counts failed confirmation attempts per key.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type redisAttemptLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewRedisAttemptLimiter allows maxAttempts failures per window. The window
// starts at the first failure.
func NewRedisAttemptLimiter(client *redis.Client, maxAttempts int, window time.Duration) AttemptLimiter {
	return &redisAttemptLimiter{client: client, maxAttempts: int64(maxAttempts), window: window}
}

func attemptsKey(key string) string {
	return "yamdb:confirm:attempts:" + key
}

func (l *redisAttemptLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Get(ctx, attemptsKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("read attempts: %w", err)
	}
	return n < l.maxAttempts, nil
}

func (l *redisAttemptLimiter) Fail(ctx context.Context, key string) error {
	k := attemptsKey(key)
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("count attempt: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return fmt.Errorf("expire attempts: %w", err)
		}
	}
	return nil
}

func (l *redisAttemptLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, attemptsKey(key)).Err(); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}

type noopAttemptLimiter struct{}

// NewNoopAttemptLimiter never throttles. Used when Redis is not configured.
func NewNoopAttemptLimiter() AttemptLimiter { return noopAttemptLimiter{} }

func (noopAttemptLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
func (noopAttemptLimiter) Fail(context.Context, string) error          { return nil }
func (noopAttemptLimiter) Reset(context.Context, string) error         { return nil }
