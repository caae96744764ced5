// Package config provides configuration for the assistant service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the assistant configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Storage
	DatabaseURL string
	DocStoreURL string

	// Text generation
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// Orchestration
	HandlerTimeout time.Duration
	MaxChainDepth  int

	// Encounter policy (rego file overriding the built-in default)
	PolicyPath string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:       getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:    getEnv("DATABASE_URL", "file:assistant.db?cache=shared&mode=rwc"),
		DocStoreURL:    getEnv("DOCSTORE_URL", "file:documents.db?cache=shared&mode=rwc"),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "http://localhost:4000"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gemini-2.5-flash"),
		LLMTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		HandlerTimeout: time.Duration(getEnvInt("HANDLER_TIMEOUT_MS", 30000)) * time.Millisecond,
		MaxChainDepth:  getEnvInt("MAX_CHAIN_DEPTH", 5),
		PolicyPath:     getEnv("POLICY_PATH", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
