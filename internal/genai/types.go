// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains shared types, interfaces, and configuration for the
// generative help-desk responder with multi-provider fallback support.
//
// Architecture:
// - Gemini: Uses google.golang.org/genai (official SDK)
// - Groq: Uses github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// Fallback Strategy:
// 1. Model Retry: Same model retried with exponential backoff
// 2. Model Chain: Next model in same provider's model list
// 3. Provider Chain: Next provider in LLM_PROVIDERS list
package genai

import (
	"context"
	"time"

	"github.com/nbenali/campusbot-go/internal/lang"
	"github.com/nbenali/campusbot-go/internal/session"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
	// ProviderGroq represents Groq's API (OpenAI-compatible, fast inference).
	ProviderGroq Provider = "groq"
)

// ProviderEndpoint defines the base URL for OpenAI-compatible providers.
// Gemini is not included as it uses a different SDK.
var ProviderEndpoint = map[Provider]string{
	ProviderGroq: "https://api.groq.com/openai/v1/",
}

// IsOpenAICompatible returns true if the provider uses OpenAI-compatible API.
func (p Provider) IsOpenAICompatible() bool {
	_, ok := ProviderEndpoint[p]
	return ok
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// Request carries everything a responder needs to answer one user message.
type Request struct {
	// Message is the current user message.
	Message string

	// History is the prior conversation window, oldest first. The
	// current message is NOT part of it.
	History []session.Turn

	// Language is the detected language of the message. The responder
	// instructs the model to answer in it.
	Language lang.Language

	// InstitutionContext describes the user's selected institution,
	// sub-unit, and department. Empty when nothing useful is known.
	InstitutionContext string

	// KnowledgeContext holds retrieved knowledge snippets the answer
	// should be grounded in. Empty when retrieval found nothing.
	KnowledgeContext string
}

// Responder generates a help-desk reply for a user message.
// Implementations include Gemini (native) and OpenAI-compatible providers (Groq).
type Responder interface {
	// Generate produces a reply text for the request.
	Generate(ctx context.Context, req Request) (string, error)
	// Provider returns the provider type for metrics.
	Provider() Provider
	// Model returns the model name for metrics.
	Model() string
	// Close releases any resources held by the responder.
	Close() error
}

// RetryConfig defines retry behavior for LLM API calls.
// Uses AWS-recommended Full Jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 2 (1 initial + 1 retry)
	MaxAttempts int

	// InitialDelay is the base delay before first retry.
	// Default: 500ms
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	// Default: 3s
	MaxDelay time.Duration
}

// ProviderConfig holds configuration for a single LLM provider.
type ProviderConfig struct {
	// APIKey is the API key for the provider.
	APIKey string

	// Models is the ordered list of chat models.
	// First model is primary, rest are fallbacks tried in order.
	Models []string
}

// ChatConfig holds configuration for all LLM providers.
type ChatConfig struct {
	// Providers is the ordered list of providers to try.
	// Fallback happens in order: first provider's models, then second.
	// Default: ["gemini", "groq"] (only those with API keys)
	Providers []Provider

	// Gemini configuration
	Gemini ProviderConfig

	// Groq configuration (OpenAI-compatible)
	Groq ProviderConfig

	// Retry controls per-model retry behavior
	Retry RetryConfig
}

// Default model configurations.
// First element is primary model, subsequent elements are fallbacks.
var (
	// DefaultGeminiChatModels is the default model chain for Gemini.
	// gemini-2.5-flash handles multilingual chat well with fast inference.
	// gemini-2.5-flash-lite provides a cost-efficient fallback.
	DefaultGeminiChatModels = []string{"gemini-2.5-flash", "gemini-2.5-flash-lite"}

	// DefaultGroqChatModels is the default model chain for Groq.
	// llama-3.3-70b-versatile gives the best Arabic and French quality.
	// llama-3.1-8b-instant is the fast fallback.
	DefaultGroqChatModels = []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"}

	// DefaultProviders is the default provider order for fallback.
	DefaultProviders = []Provider{ProviderGemini, ProviderGroq}
)

// Retry configuration defaults
const (
	DefaultMaxRetryAttempts  = 2
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}

// HasAnyProvider returns true if at least one provider is configured.
func (c *ChatConfig) HasAnyProvider() bool {
	return c.Gemini.APIKey != "" || c.Groq.APIKey != ""
}

// HasProvider returns true if the specified provider is configured with an API key.
func (c *ChatConfig) HasProvider(p Provider) bool {
	switch p {
	case ProviderGemini:
		return c.Gemini.APIKey != ""
	case ProviderGroq:
		return c.Groq.APIKey != ""
	default:
		return false
	}
}

// ConfiguredProviders returns the list of providers with configured API keys,
// in the order specified by c.Providers.
func (c *ChatConfig) ConfiguredProviders() []Provider {
	result := make([]Provider, 0, len(c.Providers))
	for _, p := range c.Providers {
		if c.HasProvider(p) {
			result = append(result, p)
		}
	}
	return result
}
