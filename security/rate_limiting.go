package security

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed window limiter backed by Redis counters.
type RateLimiter struct {
	redis  *redis.Client
	limit  int64
	window time.Duration
}

// NewRateLimiter allows perMinute requests per identifier. A nil client or a
// non-positive limit disables limiting.
func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{redis: redisClient, limit: int64(perMinute), window: time.Minute}
}

func (r *RateLimiter) enabled() bool {
	return r != nil && r.redis != nil && r.limit > 0
}

// Allow counts one request for identifier and reports whether it is within
// the limit.
func (r *RateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	if !r.enabled() {
		return true, nil
	}

	key := fmt.Sprintf("ratelimit:%s", identifier)
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := r.redis.Expire(ctx, key, r.window).Err(); err != nil {
			return true, err
		}
	}
	return count <= r.limit, nil
}

// Middleware limits by client IP. Redis errors fail open.
func (r *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !r.enabled() {
				return next(c)
			}

			allowed, err := r.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				slog.Warn("rate limiter unavailable", "error", err)
			}
			if !allowed {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "Rate limit exceeded. Please try again later.",
				})
			}

			return next(c)
		}
	}
}
