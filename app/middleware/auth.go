package middleware

import (
	"strings"

	"docqa/app/api"

	"github.com/gofiber/fiber/v2"
)

const bearerPrefix = "Bearer "

// BearerAuth rejects any request whose Authorization header does not carry
// the configured static token. Comparison is exact string equality.
func BearerAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return api.ErrUnAuthorized("missing bearer token")
		}
		if header[len(bearerPrefix):] != token {
			return api.ErrUnAuthorized("invalid authentication credentials")
		}
		return c.Next()
	}
}
