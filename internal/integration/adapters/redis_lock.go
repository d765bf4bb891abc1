// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finflow/recurring-engine/internal/application/adapter"
)

// redisRunLocker implements the adapter.RunLocker interface using redis
// SET NX with a TTL, so a crashed run can never hold a lock forever.
type redisRunLocker struct {
	client *redis.Client
}

// NewRedisRunLocker creates a new redis-backed run locker.
func NewRedisRunLocker(client *redis.Client) adapter.RunLocker {
	return &redisRunLocker{
		client: client,
	}
}

// Acquire attempts to take the lock for the given key.
func (l *redisRunLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := l.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return acquired, nil
}

// Release releases the lock for the given key.
func (l *redisRunLocker) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}
