package history

import (
	"strings"
	"testing"

	"github.com/planweave/planweave/llm"
)

func TestNormalizeToolMessagePassesThrough(t *testing.T) {
	msg := llm.ToolResultMessage("perform_grounded_search", "call-1", "search output")
	got := Normalize(msg)
	if got.Content != "search output" || got.Role != llm.RoleTool {
		t.Errorf("tool message changed: %+v", got)
	}
}

func TestNormalizeTruncatesInlinePayload(t *testing.T) {
	payload := "data:image/png;base64," + strings.Repeat("A", 500)
	msg := llm.UserMessage("請看這張圖 " + payload + " 謝謝")

	got := Normalize(msg)

	if strings.Contains(got.Content, strings.Repeat("A", 100)) {
		t.Error("payload not truncated")
	}
	if !strings.Contains(got.Content, TruncatedImageMarker) {
		t.Errorf("missing truncation marker: %q", got.Content)
	}
	if !strings.HasPrefix(got.Content, "請看這張圖 ") || !strings.HasSuffix(got.Content, " 謝謝") {
		t.Errorf("surrounding text not preserved: %q", got.Content)
	}
	if !strings.Contains(got.Content, "data:image/png;base64,") {
		t.Errorf("recognition prefix missing: %q", got.Content)
	}
}

func TestNormalizeFlattensParts(t *testing.T) {
	tests := []struct {
		name  string
		parts []llm.ContentPart
		want  string
	}{
		{
			name: "text and image",
			parts: []llm.ContentPart{
				{Type: "text", Text: "分析這個"},
				{Type: "image_url", ImageURL: "data:image/png;base64,AAAA"},
			},
			want: "分析這個 " + UploadedImageMarker,
		},
		{
			name: "image only",
			parts: []llm.ContentPart{
				{Type: "image_url", ImageURL: "data:image/jpeg;base64,BBBB"},
			},
			want: "請分析這張圖片 " + UploadedImageMarker,
		},
		{
			name:  "empty parts",
			parts: []llm.ContentPart{{Type: "text", Text: ""}},
			want:  "用戶請求",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(llm.ChatMessage{Role: llm.RoleUser, Parts: tt.parts})
			if got.Content != tt.want {
				t.Errorf("got %q, want %q", got.Content, tt.want)
			}
			if len(got.Parts) != 0 {
				t.Error("parts not flattened")
			}
		})
	}
}

func TestNormalizePlainTextUnchanged(t *testing.T) {
	msg := llm.AssistantMessage("就這樣完成了")
	if got := Normalize(msg); got.Content != msg.Content {
		t.Errorf("plain text changed: %q", got.Content)
	}
}

func TestNormalizeAllDropsEmpty(t *testing.T) {
	msgs := []llm.ChatMessage{
		llm.UserMessage("hello"),
		llm.AssistantMessage("   "),
		llm.UserMessage("world"),
	}
	got := NormalizeAll(msgs)
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
}

func TestExtractImagePayload(t *testing.T) {
	uri := "data:image/png;base64,QUJD"

	t.Run("from parts", func(t *testing.T) {
		msg := llm.ChatMessage{Role: llm.RoleUser, Parts: []llm.ContentPart{
			{Type: "text", Text: "看看"},
			{Type: "image_url", ImageURL: uri},
		}}
		if got := ExtractImagePayload(msg); got != uri {
			t.Errorf("got %q", got)
		}
	})

	t.Run("from raw text", func(t *testing.T) {
		msg := llm.UserMessage("附圖 " + uri + " 在此")
		if got := ExtractImagePayload(msg); got != uri {
			t.Errorf("got %q", got)
		}
	})

	t.Run("none", func(t *testing.T) {
		if got := ExtractImagePayload(llm.UserMessage("純文字")); got != "" {
			t.Errorf("got %q", got)
		}
	})
}
