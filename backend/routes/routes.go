package routes

import (
	"ailearn/backend/chains"
	"ailearn/backend/config"
	"ailearn/backend/controllers"
	"ailearn/backend/middleware"
	"ailearn/backend/session"
	"ailearn/backend/store"

	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, userStore *store.UserStore, sessions *session.Manager, tutor *chains.Tutor, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(userStore, sessions, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg, sessions)

	app.Post("/api/auth/logout", authMiddleware, authController.Logout)
	app.Get("/api/user/profile", authMiddleware, authController.GetProfile)

	// API key routes
	keyController := controllers.NewKeyController(userStore, cfg)
	key := app.Group("/api/key", authMiddleware)
	key.Get("/", keyController.GetStatus)
	key.Post("/", keyController.SaveKey)
	key.Post("/load", keyController.LoadSaved)
	key.Delete("/", keyController.ClearKey)

	// Chat routes: the four modes plus transcript management
	chatController := controllers.NewChatController(tutor, userStore, cfg)
	chat := app.Group("/api/chat", authMiddleware)
	chat.Post("/ask", chatController.Ask)
	chat.Post("/analyze", chatController.Analyze)
	chat.Post("/perspectives", chatController.Perspectives)
	chat.Post("/message", chatController.Message)
	chat.Get("/history", chatController.GetHistory)
	chat.Delete("/history", chatController.ClearHistory)
	chat.Get("/export", chatController.Export)

	app.Get("/api/topic", authMiddleware, chatController.GetTopic)
	app.Put("/api/topic", authMiddleware, chatController.SetTopic)
}
