package genai

import "testing"

func TestConfiguredProviders(t *testing.T) {
	cfg := ChatConfig{
		Providers: []Provider{ProviderGemini, ProviderGroq},
		Groq:      ProviderConfig{APIKey: "k"},
	}

	got := cfg.ConfiguredProviders()
	if len(got) != 1 || got[0] != ProviderGroq {
		t.Errorf("expected [groq], got %v", got)
	}

	cfg.Gemini.APIKey = "k"
	got = cfg.ConfiguredProviders()
	if len(got) != 2 || got[0] != ProviderGemini {
		t.Errorf("expected [gemini groq], got %v", got)
	}
}

func TestHasAnyProvider(t *testing.T) {
	var cfg ChatConfig
	if cfg.HasAnyProvider() {
		t.Error("empty config should have no provider")
	}
	cfg.Groq.APIKey = "k"
	if !cfg.HasAnyProvider() {
		t.Error("groq key should count")
	}
}

func TestIsOpenAICompatible(t *testing.T) {
	if ProviderGemini.IsOpenAICompatible() {
		t.Error("gemini uses its own SDK")
	}
	if !ProviderGroq.IsOpenAICompatible() {
		t.Error("groq is OpenAI-compatible")
	}
}
