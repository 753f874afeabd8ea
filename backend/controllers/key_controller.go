package controllers

import (
	"errors"

	"ailearn/backend/config"
	"ailearn/backend/keys"
	"ailearn/backend/middleware"
	"ailearn/backend/store"
	"ailearn/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type KeyController struct {
	Store *store.UserStore
	Cfg   *config.Config
}

func NewKeyController(userStore *store.UserStore, cfg *config.Config) *KeyController {
	return &KeyController{Store: userStore, Cfg: cfg}
}

// GetStatus reports whether a key is available and where it came from,
// never the key itself.
func (kc *KeyController) GetStatus(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	saved, hasSaved := kc.Store.GetAPIKey(sess.Username)

	if sess.APIKey != "" {
		source := keys.SourceSession
		if hasSaved && saved == sess.APIKey {
			source = keys.SourceSaved
		}
		return utils.Success(c, fiber.StatusOK, fiber.Map{
			"configured": true,
			"masked":     keys.Mask(sess.APIKey),
			"source":     source,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"configured": false,
		"has_saved":  hasSaved,
	})
}

// SaveKey accepts a fresh key. remember=true persists it to the user's
// record; otherwise it lives only in the session.
func (kc *KeyController) SaveKey(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	type KeyInput struct {
		APIKey   string `json:"api_key"`
		Remember bool   `json:"remember"`
	}

	var input KeyInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := keys.Remember(sess, kc.Store, input.APIKey, input.Remember); err != nil {
		if errors.Is(err, keys.ErrBadKeyFormat) {
			return utils.Error(c, fiber.StatusUnprocessableEntity, err)
		}
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	message := "API key set for this session"
	if input.Remember {
		message = "API key saved to your account"
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": message,
		"masked":  keys.Mask(sess.APIKey),
	})
}

// LoadSaved copies the key stored on the user's record into the session.
func (kc *KeyController) LoadSaved(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	saved, ok := kc.Store.GetAPIKey(sess.Username)
	if !ok {
		return utils.NotFound(c, "No saved API key")
	}

	sess.APIKey = saved
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Loaded saved API key",
		"masked":  keys.Mask(saved),
	})
}

// ClearKey drops the session copy of the key. A key saved on the record
// stays saved.
func (kc *KeyController) ClearKey(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	sess.APIKey = ""
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Session API key cleared"})
}
