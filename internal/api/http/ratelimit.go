package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

const rateLimitWindow = 24 * time.Hour

// IssueRateLimiter caps issue creation per user per day using a redis
// counter keyed by user id. The TTL is set on the first increment only, so
// the window is anchored at the user's first issue of the day.
func IssueRateLimiter(client *redis.Client, cfg config.RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if client == nil || cfg.IssuesPerDay <= 0 {
			return c.Next()
		}
		principal, ok := auth.PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}

		key := cfg.KeyPrefix + ":" + principal.User.ID
		ctx := c.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			// Fail open: a redis outage must not block issue intake.
			return c.Next()
		}
		if count == 1 {
			_ = client.Expire(ctx, key, rateLimitWindow).Err()
		}
		if count > int64(cfg.IssuesPerDay) {
			retryAfter, _ := client.TTL(ctx, key).Result()
			return apperrors.NewTooManyRequests("rate limit exceeded",
				map[string]any{"retry_after_seconds": retryAfter.Seconds()})
		}
		return c.Next()
	}
}
