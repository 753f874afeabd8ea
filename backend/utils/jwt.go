package utils

import (
	"time"

	"ailearn/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// GenerateJWTToken signs a token carrying the session ID and username.
func GenerateJWTToken(sessionID, username string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"session_id": sessionID,
		"username":   username,
		"exp":        time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ExtractSessionFromToken reads the Authorization header and returns the
// session ID and username embedded in the token.
func ExtractSessionFromToken(c *fiber.Ctx, cfg *config.Config) (sessionID, username string, err error) {
	tokenString := c.Get("Authorization")
	if tokenString == "" {
		return "", "", fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})

	if err != nil {
		return "", "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	sessionID, ok = claims["session_id"].(string)
	if !ok || sessionID == "" {
		return "", "", fiber.NewError(fiber.StatusUnauthorized, "Invalid session in token")
	}
	username, _ = claims["username"].(string)

	return sessionID, username, nil
}
