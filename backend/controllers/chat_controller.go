package controllers

import (
	"errors"

	"ailearn/backend/chains"
	"ailearn/backend/config"
	"ailearn/backend/export"
	"ailearn/backend/keys"
	"ailearn/backend/middleware"
	"ailearn/backend/session"
	"ailearn/backend/store"
	"ailearn/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ChatController struct {
	Tutor *chains.Tutor
	Store *store.UserStore
	Cfg   *config.Config
	Model string
}

func NewChatController(tutor *chains.Tutor, userStore *store.UserStore, cfg *config.Config) *ChatController {
	return &ChatController{Tutor: tutor, Store: userStore, Cfg: cfg, Model: cfg.GeminiModel}
}

type questionInput struct {
	Question string `json:"question"`
}

// parseQuestion pulls the question and the resolved API key for a chat
// request. A missing key blocks the model call with 428.
func (cc *ChatController) parseQuestion(c *fiber.Ctx) (sess *session.Session, question, apiKey string, ferr *fiber.Error) {
	sess = middleware.SessionFromCtx(c)

	var input questionInput
	if err := c.BodyParser(&input); err != nil {
		return nil, "", "", fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if input.Question == "" {
		return nil, "", "", fiber.NewError(fiber.StatusBadRequest, "Question is required")
	}

	key, _, ok := keys.Resolve(sess, cc.Store)
	if !ok {
		return nil, "", "", fiber.NewError(fiber.StatusPreconditionRequired, "API key required, set one via POST /api/key")
	}

	return sess, input.Question, key, nil
}

// generationFailed collapses every provider-side failure into one
// user-visible condition.
func generationFailed(c *fiber.Ctx) error {
	return utils.Error(c, fiber.StatusBadGateway,
		fiber.NewError(fiber.StatusBadGateway, "generation failed"))
}

// Ask is the Quick Answer mode: one round trip, raw text back.
func (cc *ChatController) Ask(c *fiber.Ctx) error {
	sess, question, apiKey, ferr := cc.parseQuestion(c)
	if ferr != nil {
		return utils.Error(c, ferr.Code, ferr)
	}

	answer, err := cc.Tutor.Ask(c.UserContext(), question, sess.Topic, apiKey)
	if err != nil {
		return generationFailed(c)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"mode":   "ask",
		"topic":  sess.Topic,
		"answer": answer,
	})
}

// Analyze is the Deep Dive mode. When the model's output doesn't parse into
// the schema the raw text is returned unchanged instead.
func (cc *ChatController) Analyze(c *fiber.Ctx) error {
	sess, question, apiKey, ferr := cc.parseQuestion(c)
	if ferr != nil {
		return utils.Error(c, ferr.Code, ferr)
	}

	explanation, err := cc.Tutor.AnalyzeTopic(c.UserContext(), question, sess.Topic, apiKey)
	if err != nil {
		var parseErr *chains.ParseError
		if errors.As(err, &parseErr) {
			return utils.Success(c, fiber.StatusOK, fiber.Map{
				"mode":       "analyze",
				"topic":      sess.Topic,
				"structured": false,
				"text":       parseErr.Raw,
			})
		}
		return generationFailed(c)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"mode":       "analyze",
		"topic":      sess.Topic,
		"structured": true,
		"analysis":   explanation,
	})
}

// Perspectives is the Multiple Viewpoints mode: four concurrent sub-calls,
// one barrier. Partial failures come back degraded, not empty.
func (cc *ChatController) Perspectives(c *fiber.Ctx) error {
	sess, question, apiKey, ferr := cc.parseQuestion(c)
	if ferr != nil {
		return utils.Error(c, ferr.Code, ferr)
	}

	results, genErr := cc.Tutor.AnalyzeParallel(c.UserContext(), question, sess.Topic, apiKey)
	if genErr != nil && allFailed(results) {
		return generationFailed(c)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"mode":         "perspectives",
		"topic":        sess.Topic,
		"perspectives": results,
		"degraded":     genErr != nil,
	})
}

func allFailed(results map[string]string) bool {
	for _, name := range chains.Perspectives {
		if results[name] != "" && results[name] != chains.FailedPerspective {
			return false
		}
	}
	return true
}

// Message is the Interactive Tutor mode: the whole transcript is replayed
// ahead of the question and the new turn is appended to memory.
func (cc *ChatController) Message(c *fiber.Ctx) error {
	sess, question, apiKey, ferr := cc.parseQuestion(c)
	if ferr != nil {
		return utils.Error(c, ferr.Code, ferr)
	}

	answer, err := cc.Tutor.Chat(c.UserContext(), question, sess.Topic, apiKey, sess.Memory)
	if err != nil {
		return generationFailed(c)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"mode":   "chat",
		"topic":  sess.Topic,
		"answer": answer,
		"turns":  sess.Memory.Len(),
	})
}

// GetHistory returns the session transcript in order.
func (cc *ChatController) GetHistory(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"turns": sess.Memory.Turns(),
	})
}

// ClearHistory resets the transcript.
func (cc *ChatController) ClearHistory(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	sess.Memory.Clear()
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "History cleared"})
}

// GetTopic returns the session's current topic.
func (cc *ChatController) GetTopic(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	return utils.Success(c, fiber.StatusOK, fiber.Map{"topic": sess.Topic})
}

// SetTopic overrides the topic for this session only.
func (cc *ChatController) SetTopic(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	type TopicInput struct {
		Topic string `json:"topic"`
	}
	var input TopicInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Topic == "" {
		return utils.BadRequest(c, "Topic is required")
	}

	sess.Topic = input.Topic
	return utils.Success(c, fiber.StatusOK, fiber.Map{"topic": sess.Topic})
}

// Export downloads the transcript as a Markdown file with manual Drive
// upload instructions. No upload happens server-side.
func (cc *ChatController) Export(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	content, err := export.Markdown(sess.Username, sess.Topic, cc.Model, sess.Memory.Turns())
	if err != nil {
		return utils.NotFound(c, "Nothing to export yet")
	}

	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.Filename(sess.Topic)+`"`)
	return c.Send(content)
}
