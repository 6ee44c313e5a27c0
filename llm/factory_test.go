package llm

import (
	"strings"
	"testing"
)

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		input string
		want  ProviderType
	}{
		{"gemini", ProviderGemini},
		{"google", ProviderGemini},
		{"GEMINI", ProviderGemini},
		{"openai", ProviderOpenAI},
		{"gpt", ProviderOpenAI},
		{"anthropic", ProviderAnthropic},
		{"claude", ProviderAnthropic},
		{"deepseek", ProviderDeepSeek},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProviderType(tt.input)
			if err != nil {
				t.Fatalf("ParseProviderType(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseProviderType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseProviderTypeUnknown(t *testing.T) {
	_, err := ParseProviderType("ollama")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "ollama") {
		t.Errorf("error should name the bad provider, got %v", err)
	}
}

func TestProviderTypeEnvVar(t *testing.T) {
	tests := []struct {
		ptype ProviderType
		want  string
	}{
		{ProviderGemini, "GEMINI_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderDeepSeek, "DEEPSEEK_API_KEY"},
	}

	for _, tt := range tests {
		if got := tt.ptype.EnvVar(); got != tt.want {
			t.Errorf("%v.EnvVar() = %q, want %q", tt.ptype, got, tt.want)
		}
	}
}

func TestNewDefaultsModel(t *testing.T) {
	provider, err := New(ProviderGemini, "test-key", "", 0, 0.7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if provider.Model() != ModelGeminiFlash {
		t.Errorf("default model = %q, want %q", provider.Model(), ModelGeminiFlash)
	}
	if provider.Name() != "gemini" {
		t.Errorf("provider name = %q, want gemini", provider.Name())
	}
}

func TestFromEnvMissingKey(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "")
	_, err := FromEnv(ProviderDeepSeek, "", 0, 0.3)
	if err == nil {
		t.Fatal("expected error when API key env var is unset")
	}
	if !strings.Contains(err.Error(), "DEEPSEEK_API_KEY") {
		t.Errorf("error should name the missing env var, got %v", err)
	}
}
