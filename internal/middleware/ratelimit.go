package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Counter records one hit against a key and reports how many hits the key
// has seen in the current window.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// redisCounter is a fixed-window counter. The first hit on a key arms the
// window expiry.
type redisCounter struct {
	client *redis.Client
}

func (rc redisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := rc.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		rc.client.Expire(ctx, key, window)
	}
	return count, nil
}

// RateLimiter rejects requests once a key exceeds Limit hits per Window.
// With no counter it degrades to a passthrough, so redis stays optional.
type RateLimiter struct {
	Counter Counter
	Prefix  string
	Limit   int
	Window  time.Duration
}

func NewRateLimiter(r *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{Prefix: prefix, Limit: limit, Window: window}
	if r != nil {
		rl.Counter = redisCounter{client: r}
	}
	return rl
}

// ByIP limits requests per client address.
func (r *RateLimiter) ByIP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r.Counter == nil || r.Limit <= 0 {
			return c.Next()
		}

		key := fmt.Sprintf("%s:%s", r.Prefix, c.IP())
		count, err := r.Counter.Hit(context.Background(), key, r.Window)
		if err != nil {
			// a broken limiter should not take login down with it
			return c.Next()
		}
		if count > int64(r.Limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many requests, try again later"})
		}
		return c.Next()
	}
}
