package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"policyrag/app/api"
)

// AdminKey guards the admin group with a shared key passed in the
// X-Admin-Key header.
func AdminKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		given := c.Get("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			return api.ErrUnAuthorized("invalid admin key")
		}
		return c.Next()
	}
}
