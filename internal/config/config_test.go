package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvTelegramBotToken, "test-token")
	t.Setenv(EnvDataDir, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "10000" {
		t.Errorf("Port = %q, want 10000", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
	if cfg.Dialogue.HistoryCap != 10 {
		t.Errorf("HistoryCap = %d, want 10", cfg.Dialogue.HistoryCap)
	}
	if cfg.Dialogue.KnowledgeLimit != 3 {
		t.Errorf("KnowledgeLimit = %d, want 3", cfg.Dialogue.KnowledgeLimit)
	}
	if cfg.Dialogue.SnippetMaxLen != 300 {
		t.Errorf("SnippetMaxLen = %d, want 300", cfg.Dialogue.SnippetMaxLen)
	}
	if !cfg.Dialogue.FAQPrefilter {
		t.Error("FAQPrefilter should default to true")
	}
	if got, want := cfg.LLMProviders, []string{"gemini", "groq"}; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("LLMProviders = %v, want %v", got, want)
	}
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv(EnvTelegramBotToken, "")
	t.Setenv(EnvDataDir, t.TempDir())

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without a Telegram token")
	}
}

func TestLoad_ProviderOverride(t *testing.T) {
	t.Setenv(EnvTelegramBotToken, "test-token")
	t.Setenv(EnvDataDir, t.TempDir())
	t.Setenv(EnvLLMProviders, "groq, gemini")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLMProviders[0] != "groq" || cfg.LLMProviders[1] != "gemini" {
		t.Errorf("LLMProviders = %v, want [groq gemini]", cfg.LLMProviders)
	}
}

func TestLoad_UnknownProviderRejected(t *testing.T) {
	t.Setenv(EnvTelegramBotToken, "test-token")
	t.Setenv(EnvDataDir, t.TempDir())
	t.Setenv(EnvLLMProviders, "openai")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should reject unknown providers")
	}
	if !strings.Contains(err.Error(), "unknown LLM provider") {
		t.Errorf("error = %v, want mention of unknown LLM provider", err)
	}
}

func TestDialogueConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := DialogueConfig{
		HistoryCap:                10,
		KnowledgeLimit:            3,
		SnippetMaxLen:             300,
		FAQPrefilterMinConfidence: 0.55,
		UserRateLimitBurst:        10,
		UserRateLimitRefillPerSec: 0.2,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() on valid config = %v", err)
	}

	bad := valid
	bad.HistoryCap = 0
	if err := bad.Validate(); err == nil {
		t.Error("Validate() should reject zero history cap")
	}

	bad = valid
	bad.FAQPrefilterMinConfidence = 1.5
	if err := bad.Validate(); err == nil {
		t.Error("Validate() should reject out-of-range prefilter confidence")
	}
}

func TestHasLLMProvider(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	if cfg.HasLLMProvider() {
		t.Error("HasLLMProvider() should be false without keys")
	}
	cfg.GroqAPIKey = "key"
	if !cfg.HasLLMProvider() {
		t.Error("HasLLMProvider() should be true with a Groq key")
	}
}
