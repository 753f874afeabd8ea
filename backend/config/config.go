package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     string
	JWTSecret      string
	UsersFile      string
	CurrentTopic   string
	GeminiBaseURL  string
	GeminiModel    string
	Temperature    float64
	RequestTimeout time.Duration
	MaxMemoryTurns int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		UsersFile:      getEnv("USERS_FILE", "data/users.json"),
		CurrentTopic:   getEnv("CURRENT_TOPIC", "RAG"),
		GeminiBaseURL:  getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		Temperature:    getEnvFloat("GEMINI_TEMPERATURE", 0.7),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxMemoryTurns: getEnvInt("MAX_MEMORY_TURNS", 50),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
