// LLM Provider factory - creates providers by name with per-agent tuning.
//
// The workflow runs two model roles with different temperatures (a planner
// around 0.7 and a tool-calling executor around 0.3), so the factory takes
// model and temperature per call rather than from a single global config.

package llm

import (
	"fmt"
	"os"
	"strings"
)

// ProviderType represents supported LLM providers.
type ProviderType int

const (
	// ProviderGemini is the Google Gemini provider (the default backend).
	ProviderGemini ProviderType = iota
	// ProviderOpenAI is the OpenAI provider (GPT models).
	ProviderOpenAI
	// ProviderAnthropic is the Anthropic provider (Claude models).
	ProviderAnthropic
	// ProviderDeepSeek is the DeepSeek provider.
	ProviderDeepSeek
)

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	switch p {
	case ProviderGemini:
		return "gemini"
	case ProviderOpenAI:
		return "openai"
	case ProviderAnthropic:
		return "anthropic"
	case ProviderDeepSeek:
		return "deepseek"
	default:
		return "unknown"
	}
}

// EnvVar returns the environment variable name for this provider's API key.
func (p ProviderType) EnvVar() string {
	switch p {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderDeepSeek:
		return "DEEPSEEK_API_KEY"
	default:
		return ""
	}
}

// DefaultModel returns the default model for this provider.
func (p ProviderType) DefaultModel() string {
	switch p {
	case ProviderGemini:
		return ModelGeminiFlash
	case ProviderOpenAI:
		return "gpt-4o"
	case ProviderAnthropic:
		return "claude-sonnet-4-20250514"
	case ProviderDeepSeek:
		return "deepseek-chat"
	default:
		return ""
	}
}

// Gemini model identifiers used by the workflow and its tools.
const (
	// ModelGeminiFlash is the default model for both agents.
	ModelGeminiFlash = "gemini-2.5-flash"
	// ModelGeminiPro is the heavier model used by the vision tools.
	ModelGeminiPro = "gemini-2.5-pro"
	// ModelGeminiFlash2 is the legacy fallback model.
	ModelGeminiFlash2 = "gemini-2.0-flash"
	// ModelGeminiImage is the image generation model.
	ModelGeminiImage = "gemini-2.0-flash-preview-image-generation"
)

// ParseProviderType parses a provider from string (case-insensitive).
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(s) {
	case "gemini", "google":
		return ProviderGemini, nil
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	case "deepseek":
		return ProviderDeepSeek, nil
	default:
		return 0, fmt.Errorf("unknown provider: %s", s)
	}
}

// New creates a provider with an explicit API key.
// An empty model selects the provider's default.
func New(providerType ProviderType, apiKey, model string, maxTokens uint32, temperature float32) (Provider, error) {
	if model == "" {
		model = providerType.DefaultModel()
	}
	if maxTokens == 0 {
		maxTokens = 4096
	}

	switch providerType {
	case ProviderGemini:
		return NewGeminiProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderDeepSeek:
		return NewDeepSeekProvider(apiKey, model, maxTokens, temperature), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %v", providerType)
	}
}

// FromEnv creates a provider, reading the API key from the environment.
// A missing key is a configuration error and fails construction.
func FromEnv(providerType ProviderType, model string, maxTokens uint32, temperature float32) (Provider, error) {
	envVar := providerType.EnvVar()
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %s environment variable not set", providerType, envVar)
	}
	return New(providerType, apiKey, model, maxTokens, temperature)
}
