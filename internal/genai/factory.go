// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains factory functions for creating responders.
package genai

import (
	"context"
	"log/slog"

	"github.com/nbenali/campusbot-go/internal/metrics"
)

// NewResponder builds a FallbackResponder from the configuration.
//
// Chain construction:
//  1. Providers are walked in cfg.Providers order, skipping those
//     without an API key.
//  2. For each provider, every model in its list becomes one chain
//     entry, primary model first.
//  3. Returns (nil, nil) when no provider is configured; the caller
//     degrades to deterministic FAQ answers only.
func NewResponder(ctx context.Context, cfg ChatConfig, m *metrics.Metrics) (Responder, error) {
	responders := []Responder{}

	addResponders := func(provider Provider) {
		switch provider {
		case ProviderGemini:
			if cfg.Gemini.APIKey == "" {
				return
			}
			models := cfg.Gemini.Models
			if len(models) == 0 {
				models = DefaultGeminiChatModels
			}
			for _, model := range models {
				r, err := newGeminiResponder(ctx, cfg.Gemini.APIKey, model)
				if err != nil {
					slog.WarnContext(ctx, "failed to create gemini responder", "model", model, "error", err)
					continue
				}
				responders = append(responders, r)
			}
		case ProviderGroq:
			if cfg.Groq.APIKey == "" {
				return
			}
			models := cfg.Groq.Models
			if len(models) == 0 {
				models = DefaultGroqChatModels
			}
			for _, model := range models {
				r, err := newOpenAIResponder(ctx, provider, cfg.Groq.APIKey, model)
				if err != nil {
					slog.WarnContext(ctx, "failed to create groq responder", "model", model, "error", err)
					continue
				}
				responders = append(responders, r)
			}
		}
	}

	providers := cfg.Providers
	if len(providers) == 0 {
		providers = DefaultProviders
	}
	seen := map[Provider]bool{}
	for _, p := range providers {
		if seen[p] {
			continue
		}
		seen[p] = true
		addResponders(p)
	}

	if len(responders) == 0 {
		slog.InfoContext(ctx, "no LLM provider configured, generative replies disabled")
		return nil, nil //nolint:nilnil // Intentional: feature disabled without API keys
	}

	slog.InfoContext(ctx, "responder configured",
		"primary_provider", responders[0].Provider(),
		"primary_model", responders[0].Model(),
		"chain_size", len(responders))

	return NewFallbackResponder(cfg.Retry, m, responders...), nil
}
