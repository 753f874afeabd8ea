package controllers

import (
	"errors"

	"ailearn/backend/config"
	"ailearn/backend/keys"
	"ailearn/backend/middleware"
	"ailearn/backend/session"
	"ailearn/backend/store"
	"ailearn/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Store    *store.UserStore
	Sessions *session.Manager
	Cfg      *config.Config
}

func NewAuthController(userStore *store.UserStore, sessions *session.Manager, cfg *config.Config) *AuthController {
	return &AuthController{Store: userStore, Sessions: sessions, Cfg: cfg}
}

// Register creates an account and opens a session right away.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	type RegisterInput struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Username == "" || input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username, email and password are required",
		})
	}
	if len(input.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Password must be at least 6 characters",
		})
	}

	if err := ac.Store.CreateUser(input.Username, input.Password, input.Email); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Username already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create user",
		})
	}

	user, _ := ac.Store.Get(input.Username)
	sess := ac.Sessions.Create(user, ac.Cfg.CurrentTopic, ac.Cfg.MaxMemoryTurns)

	token, err := utils.GenerateJWTToken(sess.ID, user.Username, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Login verifies the password, records last_login and opens a session.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if !ac.Store.VerifyUser(input.Username, input.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := ac.Store.TouchLogin(input.Username); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update login time",
		})
	}

	user, _ := ac.Store.Get(input.Username)
	sess := ac.Sessions.Create(user, ac.Cfg.CurrentTopic, ac.Cfg.MaxMemoryTurns)

	token, err := utils.GenerateJWTToken(sess.ID, user.Username, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Logout ends the session; the ephemeral API key and transcript go with it.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	ac.Sessions.Delete(sess.ID)
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Logged out"})
}

// GetProfile returns the current user's record snapshot.
func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	user, ok := ac.Store.Get(sess.Username)
	if !ok {
		return utils.NotFound(c, "User not found")
	}

	profile := fiber.Map{
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt,
		"last_login": user.LastLogin,
	}
	if user.APIKey != "" {
		profile["api_key"] = keys.Mask(user.APIKey)
	}

	return utils.Success(c, fiber.StatusOK, profile)
}
