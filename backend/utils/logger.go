package utils

import (
	"log"
	"os"
)

// LoggerConfig controls logger output.
type LoggerConfig struct {
	Output *os.File
}

// InitLogger initializes and returns the application logger.
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	return log.New(cfg.Output, "[AI Learning Assistant] ", log.LstdFlags|log.LUTC)
}
