package main

import (
	"errors"
	"log"

	"ailearn/backend/chains"
	"ailearn/backend/config"
	"ailearn/backend/gemini"
	"ailearn/backend/middleware"
	"ailearn/backend/routes"
	"ailearn/backend/session"
	"ailearn/backend/store"
	"ailearn/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Open the credential store; a corrupt file means "no users yet"
	userStore, err := store.NewUserStore(cfg.UsersFile)
	if err != nil {
		if errors.Is(err, store.ErrCorruptStore) {
			logger.Printf("warning: %v, starting with an empty store", err)
		} else {
			log.Fatalf("Error opening user store: %v", err)
		}
	}
	userStore.SetLogger(logger)

	sessions := session.NewManager()

	client := gemini.NewClient(&gemini.Config{
		BaseURL:     cfg.GeminiBaseURL,
		Model:       cfg.GeminiModel,
		Temperature: cfg.Temperature,
		Timeout:     cfg.RequestTimeout,
	})
	tutor := chains.NewTutor(client)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, userStore, sessions, tutor, cfg)

	logger.Printf("current topic: %s, model: %s", cfg.CurrentTopic, cfg.GeminiModel)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
