package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/api"
)

// rateLimiter limits prediction requests per client. A negative limit disables it.
func rateLimiter(limit int, expiration time.Duration) fiber.Handler {
	if limit < 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if expiration == 0 {
		expiration = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: expiration,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(api.Failure{
				Message: "too many requests",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
