package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dailydiet/daily-diet/logger"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	TTLMealMetrics = 30 * time.Second
)

// Cache keys
const (
	KeyMealMetricsPrefix = "daily_diet:meal_metrics:user:"
	KeyLoginLimitPrefix  = "daily_diet:ratelimit:login:"
	KeySessionPrefix     = "daily_diet:session:"
)

// MealMetricsKey is the cache key of a user's meal metrics.
func MealMetricsKey(userId int) string {
	return fmt.Sprintf("%s%d", KeyMealMetricsPrefix, userId)
}

// GetJSON retrieves a value from cache and unmarshals it as JSON.
func (r *Redis) GetJSON(ctx context.Context, key string, dest any) error {
	val, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// SetJSON marshals a value as JSON and stores it in cache.
func (r *Redis) SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return r.Set(ctx, key, string(data), expiration)
}

// GetOrSet fills dest from cache, or calls fill to compute it and stores the
// result. Cache errors are logged and never returned; only fill's error is.
func (r *Redis) GetOrSet(ctx context.Context, key string, dest any, expiration time.Duration, fill func() error) error {
	err := r.GetJSON(ctx, key, dest)
	if err == nil {
		logger.Debugf("Cache hit for key: %s", key)
		return nil
	}
	if !errors.Is(err, redis.Nil) {
		logger.Warningf("Failed to read cache for key %s: %v", key, err)
	}

	if err := fill(); err != nil {
		return err
	}
	if err := r.SetJSON(ctx, key, dest, expiration); err != nil {
		logger.Warningf("Failed to set cache for key %s: %v", key, err)
	}
	return nil
}

// InvalidateMealMetrics drops the cached metrics of a user.
func (r *Redis) InvalidateMealMetrics(ctx context.Context, userId int) {
	if err := r.Delete(ctx, MealMetricsKey(userId)); err != nil {
		logger.Warningf("Failed to invalidate meal metrics of user %d: %v", userId, err)
	}
}
