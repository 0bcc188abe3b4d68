package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "user_id"

// SessionValidator resolves a bearer token to a user id.
type SessionValidator interface {
	Validate(token string) (string, error)
}

// RequireUser rejects requests without a valid bearer session and exposes
// the user id through GetUserID.
func RequireUser(sessions SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}

		userID, err := sessions.Validate(strings.TrimSpace(token))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid session",
			})
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// GetUserID returns the authenticated user id, or "".
func GetUserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(userIDKey).(string)
	return uid
}
