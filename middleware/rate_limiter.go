package middleware

import (
	"contactdash/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimiter allows each caller IP at most requests calls per fixed window
// of duration. The window opens on the caller's first call and is counted in
// whole seconds.
func RateLimiter(requests int, duration time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        requests,
		Expiration: duration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			// Retry-After is already set to the seconds left in the window
			utils.Log.WithField("ip", c.IP()).Warn("Rate limit exceeded on %s", c.Path())
			return utils.TooManyRequestsError(utils.T(localizer(c), "error_rate_limited"), nil)
		},
	})
}
