// Package config defines environment variable keys for configuration.
package config

//nolint:gosec // Environment variable keys are not credentials.
const (
	// Core (Required)
	EnvTelegramBotToken = "CAMPUSBOT_TELEGRAM_BOT_TOKEN"

	// Server
	EnvPort            = "CAMPUSBOT_PORT"
	EnvLogLevel        = "CAMPUSBOT_LOG_LEVEL"
	EnvShutdownTimeout = "CAMPUSBOT_SHUTDOWN_TIMEOUT"
	EnvEnvironment     = "CAMPUSBOT_ENVIRONMENT"

	// Data
	EnvDataDir = "CAMPUSBOT_DATA_DIR"

	// Metrics
	EnvMetricsUsername = "CAMPUSBOT_METRICS_USERNAME"
	EnvMetricsPassword = "CAMPUSBOT_METRICS_PASSWORD"

	// Rate Limits
	EnvUserRateBurst  = "CAMPUSBOT_USER_RATE_BURST"
	EnvUserRateRefill = "CAMPUSBOT_USER_RATE_REFILL"

	// Dialogue
	EnvHistoryCap          = "CAMPUSBOT_HISTORY_CAP"
	EnvKnowledgeLimit      = "CAMPUSBOT_KNOWLEDGE_LIMIT"
	EnvFAQPrefilter        = "CAMPUSBOT_FAQ_PREFILTER"
	EnvFAQPrefilterMinConf = "CAMPUSBOT_FAQ_PREFILTER_MIN_CONFIDENCE"

	// LLM Feature
	EnvLLMProviders     = "CAMPUSBOT_LLM_PROVIDERS"
	EnvGeminiAPIKey     = "CAMPUSBOT_GEMINI_API_KEY"
	EnvGroqAPIKey       = "CAMPUSBOT_GROQ_API_KEY"
	EnvGeminiChatModels = "CAMPUSBOT_GEMINI_CHAT_MODELS"
	EnvGroqChatModels   = "CAMPUSBOT_GROQ_CHAT_MODELS"

	// Sentry Feature
	EnvSentryToken = "CAMPUSBOT_SENTRY_TOKEN"
	EnvSentryHost  = "CAMPUSBOT_SENTRY_HOST"
)
