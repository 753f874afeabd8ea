package middleware

import (
	"ailearn/backend/config"
	"ailearn/backend/session"
	"ailearn/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware requires both a valid JWT and a live session, so logout
// invalidates outstanding tokens. The session is stashed in request locals.
func AuthMiddleware(cfg *config.Config, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, _, err := utils.ExtractSessionFromToken(c, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		sess, ok := sessions.Get(sessionID)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Session expired, please login again",
			})
		}

		c.Locals("session", sess)
		return c.Next()
	}
}

// SessionFromCtx returns the session attached by AuthMiddleware.
func SessionFromCtx(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals("session").(*session.Session)
	return sess
}
