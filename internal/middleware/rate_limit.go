package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/techbridge-api/internal/utils"
	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

// RateLimit throttles a route per authenticated user, falling back to the client
// IP for anonymous callers. Rejections use the standard error envelope.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, ok := c.Locals("user_id").(uint); ok && userID != 0 {
				return fmt.Sprintf("%s:user:%d", identifier, userID)
			}
			return fmt.Sprintf("%s:ip:%s", identifier, c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			err := appErrors.PolicyViolation("RATE_LIMITED", "too many requests").
				WithDetail("limit", max).
				WithRetryAfter(window)
			err.Status = fiber.StatusTooManyRequests
			return utils.SendAppError(c, err)
		},
	})
}
