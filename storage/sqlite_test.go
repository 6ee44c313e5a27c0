package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/planweave/planweave/llm"
)

func newTestStorage(t *testing.T) *SqliteStorage {
	t.Helper()
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("failed to create in-memory storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestSqliteSaveAndLoad(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	history := []llm.ChatMessage{
		llm.SystemMessage("你是助理"),
		llm.UserMessage("今天台北天氣如何"),
		llm.AssistantMessage("需要工具協助：執行任務計劃"),
		llm.ToolResultMessage("perform_grounded_search", "call-1", "晴時多雲"),
	}

	if err := storage.Save(ctx, "session-1", history); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != len(history) {
		t.Fatalf("expected %d messages, got %d", len(history), len(loaded))
	}
	for i := range history {
		if loaded[i].Role != history[i].Role || loaded[i].Content != history[i].Content {
			t.Errorf("message %d mismatch: %+v", i, loaded[i])
		}
	}
	if loaded[3].Name != "perform_grounded_search" || loaded[3].ToolCallID != "call-1" {
		t.Errorf("tool metadata lost: %+v", loaded[3])
	}
}

func TestSqliteRoundTripsToolCallsAndParts(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	assistant := llm.AssistantMessage("")
	assistant.ToolCalls = []llm.ToolCall{{
		ID:        "call-7",
		Name:      "analyze_image",
		Arguments: json.RawMessage(`{"prompt":"描述圖片"}`),
	}}
	user := llm.ChatMessage{Role: llm.RoleUser, Content: "附圖", Parts: []llm.ContentPart{
		{Type: "image_url", ImageURL: "data:image/png;base64,QUJD"},
	}}

	if err := storage.Save(ctx, "session-1", []llm.ChatMessage{user, assistant}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded[0].Parts) != 1 || loaded[0].Parts[0].ImageURL != "data:image/png;base64,QUJD" {
		t.Errorf("parts lost: %+v", loaded[0])
	}
	if len(loaded[1].ToolCalls) != 1 || loaded[1].ToolCalls[0].Name != "analyze_image" {
		t.Errorf("tool calls lost: %+v", loaded[1])
	}
}

func TestSqliteSaveReplacesHistory(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	if err := storage.Save(ctx, "s", []llm.ChatMessage{llm.UserMessage("一")}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := storage.Save(ctx, "s", []llm.ChatMessage{llm.UserMessage("一"), llm.AssistantMessage("二")}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "s")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected replaced history of 2, got %d", len(loaded))
	}
}

func TestSqliteLoadMissingSession(t *testing.T) {
	storage := newTestStorage(t)

	loaded, err := storage.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded == nil || len(loaded) != 0 {
		t.Errorf("expected empty slice, got %v", loaded)
	}
}

func TestSqliteDeleteAndList(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	_ = storage.Save(ctx, "a", []llm.ChatMessage{llm.UserMessage("hi")})
	_ = storage.Save(ctx, "b", []llm.ChatMessage{llm.UserMessage("yo")})

	if err := storage.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	sessions, err := storage.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0] != "b" {
		t.Errorf("unexpected sessions: %v", sessions)
	}
}

func TestInMemoryStorageIsolation(t *testing.T) {
	storage := NewInMemoryStorage()
	ctx := context.Background()

	history := []llm.ChatMessage{llm.UserMessage("原始")}
	if err := storage.Save(ctx, "s", history); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	history[0].Content = "改掉"
	loaded, _ := storage.Load(ctx, "s")
	if loaded[0].Content != "原始" {
		t.Error("storage shares memory with caller slice")
	}

	loaded[0].Content = "再改"
	again, _ := storage.Load(ctx, "s")
	if again[0].Content != "原始" {
		t.Error("loaded copy aliases stored messages")
	}
}
