package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"talentbridge/recruiting-api/internal/apperror"
)

// RateLimit rejects the request with 429 and a Retry-After header once key
// has been hit limit times within window. An empty key skips the check.
func RateLimit(limiter Limiter, limit int, window time.Duration, key func(c *fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}
		k := key(c)
		if k == "" {
			return c.Next()
		}

		allowed, retry := limiter.Allow(c.UserContext(), k, limit, window)
		if !allowed {
			seconds := int(math.Ceil(retry.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
			return apperror.New(apperror.CodeRateLimited, "too many requests, retry in "+strconv.Itoa(seconds)+"s", nil)
		}
		return c.Next()
	}
}
