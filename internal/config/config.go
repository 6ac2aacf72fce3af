package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL      string
	Environment     string
	LogLevel        slog.Level
	LogFile         string        // Empty discards console logs
	StartNode       string
	TransitionDelay time.Duration // Pause before a chosen option is resolved
	RequestTimeout  time.Duration
}

// Load reads the configuration from the environment. Values from a .env
// file in the working directory are used when the variable is unset.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		APIBaseURL:      strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:         getEnv("LOG_FILE", ""),
		StartNode:       getEnv("START_NODE", "node_1"),
		TransitionDelay: parseDuration(getEnv("TRANSITION_DELAY", ""), 500*time.Millisecond),
		RequestTimeout:  parseDuration(getEnv("REQUEST_TIMEOUT", ""), 2*time.Minute),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseDuration accepts Go durations ("750ms") or a bare number of
// milliseconds. Invalid or negative values give def.
func parseDuration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	if d, err := time.ParseDuration(value + "ms"); err == nil && d >= 0 {
		return d
	}
	return def
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
