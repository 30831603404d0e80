package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/feconecta/feconecta-api/internal/session"
	"github.com/feconecta/feconecta-api/internal/utils"
)

// Protected validates bearer tokens issued by the session manager and binds
// the authenticated user ID to the request.
func Protected(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := sessions.ParseToken(tokenString)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", userID)

		return c.Next()
	}
}

// UserIDFromContext returns the authenticated user ID bound by Protected,
// or zero when the request is anonymous.
func UserIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
