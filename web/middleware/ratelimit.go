package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dailydiet/daily-diet/logger"
	"github.com/dailydiet/daily-diet/util/metrics"
	"github.com/dailydiet/daily-diet/web/cache"
	"github.com/dailydiet/daily-diet/web/entity"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	// Requests allowed per key within Window. Zero disables the limiter.
	Requests  int
	Window    time.Duration
	KeyPrefix string
	KeyFunc   func(c *gin.Context) string
}

// LoginRateLimitConfig limits login attempts per client IP and minute.
func LoginRateLimitConfig(requestsPerMinute int) RateLimitConfig {
	return RateLimitConfig{
		Requests:  requestsPerMinute,
		Window:    time.Minute,
		KeyPrefix: cache.KeyLoginLimitPrefix,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// RateLimitMiddleware rejects requests above the configured rate with 429.
// When Redis is unavailable requests are let through.
func RateLimitMiddleware(rc *cache.Redis, config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc == nil || config.Requests <= 0 {
			c.Next()
			return
		}

		key := config.KeyFunc(c)
		count, err := rc.IncrWindow(c.Request.Context(), config.KeyPrefix+key, config.Window)
		if err != nil {
			logger.Warning("Rate limit increment failed:", err)
			c.Next()
			return
		}

		remaining := config.Requests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if int(count) > config.Requests {
			logger.Warningf("Rate limit exceeded for %s on %s (count: %d)", key, c.FullPath(), count)
			metrics.RateLimitHits.WithLabelValues(c.FullPath()).Inc()
			c.Header("Retry-After", strconv.Itoa(int(config.Window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, entity.Msg{
				Success: false,
				Msg:     "too many requests, try again later",
			})
			return
		}

		c.Next()
	}
}
