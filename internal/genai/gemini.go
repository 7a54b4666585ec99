// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains the Gemini implementation of the help-desk responder.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/nbenali/campusbot-go/internal/session"
)

// geminiResponder generates help-desk replies using the Gemini API.
// It implements the Responder interface.
type geminiResponder struct {
	client *genai.Client
	model  string
}

// newGeminiResponder creates a new Gemini-based responder.
// Returns nil if apiKey is empty (provider disabled).
func newGeminiResponder(ctx context.Context, apiKey, model string) (*geminiResponder, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiChatModels[0]
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiResponder{
		client: client,
		model:  model,
	}, nil
}

// Generate produces a reply grounded in the request's knowledge context.
func (r *geminiResponder) Generate(ctx context.Context, req Request) (string, error) {
	if r == nil || r.client == nil {
		return "", errors.New("gemini responder not configured")
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.Role(genai.RoleUser)
		if turn.Role == session.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(
			SystemPrompt(req.Language, req.InstitutionContext, req.KnowledgeContext),
			genai.RoleUser,
		),
		Temperature:     genai.Ptr[float32](0.4),
		MaxOutputTokens: 1024,
	}

	start := time.Now()
	resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, config)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "chat completion API call failed",
			"provider", "gemini",
			"model", r.model,
			"input_length", len(req.Message),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from model")
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			reply.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(reply.String())
	if result == "" {
		return "", errors.New("no text in response")
	}

	if resp.UsageMetadata != nil {
		slog.DebugContext(ctx, "chat completion succeeded",
			"provider", "gemini",
			"model", r.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens", resp.UsageMetadata.TotalTokenCount,
			"duration_ms", duration.Milliseconds(),
			"reply_length", len(result))
	}

	return result, nil
}

// Provider returns the provider type for this responder.
func (r *geminiResponder) Provider() Provider {
	return ProviderGemini
}

// Model returns the model name for this responder.
func (r *geminiResponder) Model() string {
	if r == nil {
		return ""
	}
	return r.model
}

// Close releases resources.
// Safe to call on nil receiver.
func (r *geminiResponder) Close() error {
	if r == nil {
		return nil
	}
	// Note: genai.Client does not require explicit cleanup in current SDK version
	return nil
}
