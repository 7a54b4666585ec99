// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains the unified OpenAI-compatible implementation of the
// help-desk responder. It works with any OpenAI-compatible provider via a
// custom BaseURL; Groq is the one wired today.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/nbenali/campusbot-go/internal/session"
)

// openaiResponder generates help-desk replies using an OpenAI-compatible API.
// It implements the Responder interface.
type openaiResponder struct {
	client   openai.Client
	model    string
	provider Provider
}

// newOpenAIResponder creates a new OpenAI-compatible responder.
// Returns nil if apiKey is empty (provider disabled).
func newOpenAIResponder(_ context.Context, provider Provider, apiKey, model string) (*openaiResponder, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	baseURL, ok := ProviderEndpoint[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}

	if model == "" {
		switch provider {
		case ProviderGroq:
			model = DefaultGroqChatModels[0]
		default:
			return nil, fmt.Errorf("no default model for provider: %s", provider)
		}
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiResponder{
		client:   client,
		model:    model,
		provider: provider,
	}, nil
}

// Generate produces a reply grounded in the request's knowledge context.
func (r *openaiResponder) Generate(ctx context.Context, req Request) (string, error) {
	if r == nil {
		return "", errors.New("responder not configured")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	messages = append(messages, openai.SystemMessage(
		SystemPrompt(req.Language, req.InstitutionContext, req.KnowledgeContext),
	))
	for _, turn := range req.History {
		if turn.Role == session.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Text))
		} else {
			messages = append(messages, openai.UserMessage(turn.Text))
		}
	}
	messages = append(messages, openai.UserMessage(req.Message))

	params := openai.ChatCompletionNewParams{
		Model:       r.model,
		Messages:    messages,
		Temperature: openai.Float(0.4),
		MaxTokens:   openai.Int(1024),
	}

	start := time.Now()
	resp, err := r.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "chat completion API call failed",
			"provider", r.provider,
			"model", r.model,
			"input_length", len(req.Message),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from model")
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", errors.New("no text in response")
	}

	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "chat completion succeeded",
			"provider", r.provider,
			"model", r.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"total_tokens", resp.Usage.TotalTokens,
			"duration_ms", duration.Milliseconds(),
			"reply_length", len(result))
	}

	return result, nil
}

// Provider returns the provider type for this responder.
func (r *openaiResponder) Provider() Provider {
	if r == nil {
		return ""
	}
	return r.provider
}

// Model returns the model name for this responder.
func (r *openaiResponder) Model() string {
	if r == nil {
		return ""
	}
	return r.model
}

// Close releases resources.
// Safe to call on nil receiver.
func (r *openaiResponder) Close() error {
	// openai-go client doesn't require cleanup
	return nil
}
