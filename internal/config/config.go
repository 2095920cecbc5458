package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	BookforgeAPIKey string

	// LLM backend
	LLMAPIKey  string
	LLMModel   string
	LLMBaseURL string

	// Per-call settings
	CallTimeout time.Duration

	// Retry bounds
	PlanRetries    int
	ContentRetries int

	// Language detection fallback
	DefaultLanguage string

	// Session state
	SessionTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		BookforgeAPIKey: os.Getenv("BOOKFORGE_API_KEY"),

		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		LLMModel:   envOr("LLM_MODEL", "gpt-4o-mini"),
		LLMBaseURL: envOr("LLM_BASE_URL", "https://api.openai.com/v1"),

		CallTimeout: envDuration("CALL_TIMEOUT", 2*time.Minute),

		PlanRetries:    envInt("PLAN_RETRIES", 2),
		ContentRetries: envInt("CONTENT_RETRIES", 2),

		DefaultLanguage: envOr("DEFAULT_LANGUAGE", "en"),

		SessionTTL: envDuration("SESSION_TTL", 1*time.Hour),
	}

	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 2 * time.Minute
	}
	if cfg.PlanRetries < 0 {
		cfg.PlanRetries = 2
	}
	if cfg.ContentRetries < 0 {
		cfg.ContentRetries = 2
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.BookforgeAPIKey == "" {
		return fmt.Errorf("BOOKFORGE_API_KEY is required")
	}
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
