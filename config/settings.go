// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Settings holds all application configuration.
type Settings struct {
	Planner  AgentConfig
	Tasker   AgentConfig
	Tools    ToolsConfig
	Memory   MemoryConfig
	Workflow WorkflowConfig
}

// AgentConfig holds one agent's model configuration.
type AgentConfig struct {
	Provider    string
	Model       string
	Temperature float64
	Prompt      string
}

// ToolsConfig selects the tool set bound to the task agent.
type ToolsConfig struct {
	// Enabled lists tool names to bind; empty binds every registered tool.
	Enabled []string
	// OutputDir is where generated files are written.
	OutputDir string
}

// MemoryConfig controls the long-term memory gateway.
type MemoryConfig struct {
	Enabled bool
	// UserID namespaces memory records.
	UserID string
	// DBPath selects a SQLite file; empty keeps memory in-process.
	DBPath string
}

// WorkflowConfig bounds the plan/execute loop.
type WorkflowConfig struct {
	// MaxTurns caps planner invocations per user turn.
	MaxTurns int
	// TokenBudget bounds trimmed history size.
	TokenBudget int
}

// DefaultEnabledTools is the tool set bound when none is configured.
var DefaultEnabledTools = []string{
	"analyze_image",
	"analyze_multimodal_content",
	"perform_grounded_search",
	"generate_gemini_image",
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"openai":    {"OPENAI_MODEL", "gpt-4o", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY"},
	"deepseek":  {"DEEPSEEK_MODEL", "deepseek-chat", "DEEPSEEK_API_KEY"},
	"gemini":    {"GEMINI_MODEL", "gemini-2.5-flash", "GEMINI_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// New creates settings for the specified provider, loading values from
// environment variables. Returns an error if the provider is unknown or
// environment variables contain invalid values.
func New(provider string) (Settings, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	plannerTemp, err := getEnvFloat64("RESULT_AGENT_TEMPERATURE", 0.7)
	if err != nil {
		return Settings{}, err
	}
	taskerTemp, err := getEnvFloat64("TASK_AGENT_TEMPERATURE", 0.3)
	if err != nil {
		return Settings{}, err
	}
	maxTurns, err := getEnvInt("WORKFLOW_MAX_TURNS", 12)
	if err != nil {
		return Settings{}, err
	}
	tokenBudget, err := getEnvInt("HISTORY_TOKEN_BUDGET", 2000)
	if err != nil {
		return Settings{}, err
	}
	memoryEnabled, err := getEnvBool("ENABLE_LONG_TERM_MEMORY", true)
	if err != nil {
		return Settings{}, err
	}

	plannerModel := os.Getenv("RESULT_AGENT_MODEL")
	if plannerModel == "" {
		plannerModel = envOrDefault(info.modelEnv, info.defaultModel)
	}
	taskerModel := os.Getenv("TASK_AGENT_MODEL")
	if taskerModel == "" {
		taskerModel = envOrDefault(info.modelEnv, info.defaultModel)
	}

	enabled := DefaultEnabledTools
	if raw := os.Getenv("AVAILABLE_TOOLS"); raw != "" {
		enabled = splitList(raw)
	}

	return Settings{
		Planner: AgentConfig{
			Provider:    provider,
			Model:       plannerModel,
			Temperature: plannerTemp,
			Prompt:      ResultAgentPrompt,
		},
		Tasker: AgentConfig{
			Provider:    provider,
			Model:       taskerModel,
			Temperature: taskerTemp,
			Prompt:      TaskAgentPrompt,
		},
		Tools: ToolsConfig{
			Enabled:   enabled,
			OutputDir: envOrDefault("TOOL_OUTPUT_DIR", "generated_images"),
		},
		Memory: MemoryConfig{
			Enabled: memoryEnabled,
			UserID:  envOrDefault("USER_ID", "workshop_user"),
			DBPath:  os.Getenv("MEMORY_DB_PATH"),
		},
		Workflow: WorkflowConfig{
			MaxTurns:    maxTurns,
			TokenBudget: tokenBudget,
		},
	}, nil
}

// MustNew creates settings for the specified provider.
// Panics if the provider is unknown or environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustNew(provider string) Settings {
	settings, err := New(provider)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(provider)
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return b, nil
}
