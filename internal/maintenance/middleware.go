package maintenance

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// exemptPrefixes stay reachable while the store is down: health probes, the
// admin console (including the sign-in it needs) and the payment webhook,
// since the gateway retries failed deliveries aggressively.
var exemptPrefixes = []string{
	"/api/health",
	"/api/admin",
	"/api/sign-in",
	"/api/payments/webhook",
}

// Middleware returns 503 for shopper traffic while maintenance mode is on.
func Middleware(cache *Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, p := range exemptPrefixes {
			if strings.HasPrefix(path, p) {
				return c.Next()
			}
		}

		s := cache.Current()
		if !s.Enabled {
			return c.Next()
		}

		msg := s.Message
		if msg == "" {
			msg = "store is under maintenance, please try again later"
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": msg})
	}
}
