// Package cache provides the Redis client shared by the session store, the
// login rate limiter and the meal metrics cache. It supports both embedded
// Redis (miniredis) and an external Redis server.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dailydiet/daily-diet/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Redis wraps a go-redis client and, when embedded, the miniredis server
// behind it. A nil *Redis is valid and behaves as an always-empty cache.
type Redis struct {
	client *redis.Client
	mini   *miniredis.Miniredis
}

// Open connects to addr, or starts an embedded Redis when addr is empty.
func Open(ctx context.Context, addr string) (*Redis, error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded Redis: %w", err)
		}
		logger.Info("Embedded Redis started on", mr.Addr())
		return &Redis{
			client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
			mini:   mr,
		}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	logger.Info("Connected to external Redis at", addr)
	return &Redis{client: client}, nil
}

// Client returns the underlying go-redis client.
func (r *Redis) Client() *redis.Client {
	if r == nil {
		return nil
	}
	return r.client
}

func (r *Redis) IsEmbedded() bool {
	return r != nil && r.mini != nil
}

// Close closes the Redis connection and stops embedded Redis if running.
func (r *Redis) Close() error {
	if r == nil {
		return nil
	}
	err := r.client.Close()
	if r.mini != nil {
		r.mini.Close()
	}
	return err
}

// Get returns the value at key. A missing key yields redis.Nil.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	if r == nil {
		return "", redis.Nil
	}
	return r.client.Get(ctx, key).Result()
}

func (r *Redis) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if r == nil {
		return nil
	}
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if r == nil || len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// IncrWindow increments the counter at key and returns the new value. The
// counter expires window after its first increment (fixed window).
func (r *Redis) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	if r == nil {
		return 0, nil
	}
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}
