package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"predman/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// UseRedis installs the client shared by the rate limiters. With a nil client
// every limiter counts in process memory instead.
func UseRedis(c *redis.Client) {
	redisClient = c
}

// RedisRateLimit implements a fixed-window rate limiter using Redis INCR/EXPIRE.
// Authenticated requests are counted per user, anonymous ones per client IP.
// key format: rl:<scope>:<window_seconds>:<identifier>
func RedisRateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	fallback := newMemoryLimiter(maxRequests, window)
	windowSec := strconv.FormatInt(int64(window.Seconds()), 10)

	return func(c *gin.Context) {
		ident := c.GetString("user_id")
		if ident == "" {
			ident = "ip:" + c.ClientIP()
		}

		var count int64
		if redisClient == nil {
			count = int64(fallback.hit(ident))
		} else {
			key := "rl:" + scope + ":" + windowSec + ":" + ident
			ctx := context.Background()

			val, err := redisClient.Incr(ctx, key).Result()
			if err != nil {
				// on Redis error, fail-open (allow) but set header
				logger.Warn("rate limiter redis error", "error", err)
				c.Header("X-RateLimit-Error", "redis-error")
				c.Next()
				return
			}
			if val == 1 {
				// first increment, set expiry
				redisClient.Expire(ctx, key, window)
			}
			count = val
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-count), 10))

		if count > int64(maxRequests) {
			RLBlocked.WithLabelValues(scope).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(scope).Inc()
		c.Next()
	}
}
