// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, dialogue limits, rate limits and LLM providers.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// RateLimiterCleanupInterval is how often idle per-user rate limiter
// buckets are evicted from memory.
const RateLimiterCleanupInterval = 10 * time.Minute

// Config holds all application configuration
type Config struct {
	// Telegram Bot Configuration
	TelegramBotToken string

	// LLM Configuration
	GeminiAPIKey string // Gemini API key (primary generative provider)
	GroqAPIKey   string // Groq API key (OpenAI-compatible fallback provider)

	// LLM Model Configuration (optional, defaults apply if empty)
	LLMProviders     []string // Provider fallback order (default: gemini, groq)
	GeminiChatModels []string // Model chain for Gemini chat completion
	GroqChatModels   []string // Model chain for Groq chat completion

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Sentry (Better Stack errors) Configuration
	SentryToken string // Errors application token (empty = disabled)
	SentryHost  string // Errors ingesting host

	// Server Configuration
	Port            string
	LogLevel        string
	Environment     string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Data directory for the SQLite database

	// Dialogue Configuration (embedded)
	Dialogue DialogueConfig
}

// DialogueConfig holds dialogue-specific configuration
type DialogueConfig struct {
	HistoryCap     int // Maximum turns kept per session (default: 10)
	KnowledgeLimit int // Maximum knowledge snippets per query (default: 3)
	SnippetMaxLen  int // Maximum characters per snippet body in context (default: 300)

	// FAQ pre-filter: deterministic answers short-circuit generation when
	// the matcher confidence reaches FAQPrefilterMinConfidence.
	FAQPrefilter              bool
	FAQPrefilterMinConfidence float64

	// Rate Limits (Token Bucket Algorithm)
	UserRateLimitBurst        float64 // Maximum burst tokens per user (default: 10)
	UserRateLimitRefillPerSec float64 // Tokens refilled per second (default: 0.2 = 1 per 5s)
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: getEnv(EnvTelegramBotToken, ""),

		GeminiAPIKey: getEnv(EnvGeminiAPIKey, ""),
		GroqAPIKey:   getEnv(EnvGroqAPIKey, ""),

		LLMProviders:     getListEnv(EnvLLMProviders, []string{"gemini", "groq"}),
		GeminiChatModels: getListEnv(EnvGeminiChatModels, nil),
		GroqChatModels:   getListEnv(EnvGroqChatModels, nil),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		SentryToken: getEnv(EnvSentryToken, ""),
		SentryHost:  getEnv(EnvSentryHost, "errors.betterstack.com"),

		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		Environment:     getEnv(EnvEnvironment, "production"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),

		DataDir: getEnv(EnvDataDir, getDefaultDataDir()),

		Dialogue: DialogueConfig{
			HistoryCap:                getIntEnv(EnvHistoryCap, 10),
			KnowledgeLimit:            getIntEnv(EnvKnowledgeLimit, 3),
			SnippetMaxLen:             300,
			FAQPrefilter:              getBoolEnv(EnvFAQPrefilter, true),
			FAQPrefilterMinConfidence: getFloatEnv(EnvFAQPrefilterMinConf, 0.55),
			UserRateLimitBurst:        getFloatEnv(EnvUserRateBurst, 10.0),
			UserRateLimitRefillPerSec: getFloatEnv(EnvUserRateRefill, 0.2), // 1 per 5s
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.TelegramBotToken == "" {
		errs = append(errs, errors.New(EnvTelegramBotToken+" is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New(EnvDataDir+" is required"))
	}
	if err := c.Dialogue.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("dialogue config: %w", err))
	}
	for _, p := range c.LLMProviders {
		if p != "gemini" && p != "groq" {
			errs = append(errs, fmt.Errorf("unknown LLM provider %q", p))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks dialogue configuration ranges
func (c *DialogueConfig) Validate() error {
	var errs []error

	if c.HistoryCap <= 0 {
		errs = append(errs, fmt.Errorf("history cap must be positive, got %d", c.HistoryCap))
	}
	if c.KnowledgeLimit < 0 {
		errs = append(errs, fmt.Errorf("knowledge limit cannot be negative, got %d", c.KnowledgeLimit))
	}
	if c.FAQPrefilterMinConfidence < 0 || c.FAQPrefilterMinConfidence > 1 {
		errs = append(errs, fmt.Errorf("prefilter confidence must be in [0,1], got %v", c.FAQPrefilterMinConfidence))
	}
	if c.UserRateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("user rate burst must be positive, got %v", c.UserRateLimitBurst))
	}
	if c.UserRateLimitRefillPerSec <= 0 {
		errs = append(errs, fmt.Errorf("user rate refill must be positive, got %v", c.UserRateLimitRefillPerSec))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasLLMProvider returns true if at least one LLM provider is configured.
func (c *Config) HasLLMProvider() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "campusbot.db")
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getListEnv retrieves a comma-separated list environment variable with
// fallback to a default slice. Blank elements are dropped.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}
