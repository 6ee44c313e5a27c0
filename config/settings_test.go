package config

import (
	"strings"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	settings, err := New("gemini")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if settings.Planner.Model != "gemini-2.5-flash" {
		t.Errorf("unexpected planner model: %q", settings.Planner.Model)
	}
	if settings.Planner.Temperature != 0.7 {
		t.Errorf("unexpected planner temperature: %v", settings.Planner.Temperature)
	}
	if settings.Tasker.Temperature != 0.3 {
		t.Errorf("unexpected tasker temperature: %v", settings.Tasker.Temperature)
	}
	if settings.Workflow.MaxTurns != 12 {
		t.Errorf("unexpected max turns: %d", settings.Workflow.MaxTurns)
	}
	if settings.Workflow.TokenBudget != 2000 {
		t.Errorf("unexpected token budget: %d", settings.Workflow.TokenBudget)
	}
	if !settings.Memory.Enabled {
		t.Error("memory should default to enabled")
	}
	if settings.Memory.UserID != "workshop_user" {
		t.Errorf("unexpected user id: %q", settings.Memory.UserID)
	}
	if len(settings.Tools.Enabled) != 4 {
		t.Errorf("unexpected default tool set: %v", settings.Tools.Enabled)
	}
}

func TestNewProviderAliases(t *testing.T) {
	tests := []struct {
		alias string
		want  string
	}{
		{"google", "gemini"},
		{"claude", "anthropic"},
		{"gpt", "openai"},
		{"GEMINI", "gemini"},
	}

	for _, tt := range tests {
		settings, err := New(tt.alias)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", tt.alias, err)
		}
		if settings.Planner.Provider != tt.want {
			t.Errorf("New(%q) provider = %q, want %q", tt.alias, settings.Planner.Provider, tt.want)
		}
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New("oracle"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RESULT_AGENT_MODEL", "gemini-2.5-pro")
	t.Setenv("TASK_AGENT_TEMPERATURE", "0.1")
	t.Setenv("AVAILABLE_TOOLS", "perform_grounded_search, generate_gemini_image")
	t.Setenv("WORKFLOW_MAX_TURNS", "5")
	t.Setenv("ENABLE_LONG_TERM_MEMORY", "false")

	settings, err := New("gemini")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if settings.Planner.Model != "gemini-2.5-pro" {
		t.Errorf("planner model override ignored: %q", settings.Planner.Model)
	}
	if settings.Tasker.Temperature != 0.1 {
		t.Errorf("tasker temperature override ignored: %v", settings.Tasker.Temperature)
	}
	if len(settings.Tools.Enabled) != 2 || settings.Tools.Enabled[1] != "generate_gemini_image" {
		t.Errorf("tool list override ignored: %v", settings.Tools.Enabled)
	}
	if settings.Workflow.MaxTurns != 5 {
		t.Errorf("max turns override ignored: %d", settings.Workflow.MaxTurns)
	}
	if settings.Memory.Enabled {
		t.Error("memory disable ignored")
	}
}

func TestInvalidEnvValues(t *testing.T) {
	t.Setenv("WORKFLOW_MAX_TURNS", "soon")
	if _, err := New("gemini"); err == nil {
		t.Error("expected error for non-numeric max turns")
	}
}

func TestPromptsCarryProtocolMarkers(t *testing.T) {
	for _, marker := range []string{"需要工具協助", "執行任務計劃", "執行步驟："} {
		if !strings.Contains(ResultAgentPrompt, marker) {
			t.Errorf("planner prompt missing %q", marker)
		}
	}
	if !strings.Contains(TaskAgentPrompt, "圖片數據已截斷") {
		t.Error("task prompt missing truncation note")
	}
}
