package history

import (
	"fmt"
	"strings"
	"testing"

	"github.com/planweave/planweave/llm"
)

func TestTrimShortHistoryUntouched(t *testing.T) {
	msgs := []llm.ChatMessage{
		llm.SystemMessage("system"),
		llm.UserMessage("hi"),
		llm.AssistantMessage("hello"),
		llm.UserMessage("again"),
	}
	got := Trim(msgs, DefaultTokenBudget)
	if len(got) != len(msgs) {
		t.Fatalf("short history trimmed: %d -> %d", len(msgs), len(got))
	}
}

func TestTrimKeepsSystemAndRecentTurns(t *testing.T) {
	msgs := []llm.ChatMessage{llm.SystemMessage("你是助理")}
	for i := 0; i < 20; i++ {
		msgs = append(msgs, llm.UserMessage(fmt.Sprintf("問題 %d %s", i, strings.Repeat("字", 200))))
		msgs = append(msgs, llm.AssistantMessage(fmt.Sprintf("回答 %d %s", i, strings.Repeat("字", 200))))
	}
	msgs = append(msgs, llm.UserMessage("最後的問題"))

	got := Trim(msgs, DefaultTokenBudget)

	if len(got) >= len(msgs) {
		t.Fatal("long history not trimmed")
	}
	if got[0].Role != llm.RoleSystem {
		t.Errorf("system message lost, first role %q", got[0].Role)
	}
	if got[1].Role != llm.RoleUser {
		t.Errorf("window does not open on a user turn, got %q", got[1].Role)
	}
	last := got[len(got)-1]
	if last.Content != "最後的問題" {
		t.Errorf("most recent message lost, last %q", last.Content)
	}

	total := 0
	for _, m := range got[1:] {
		total += ApproxTokens(m)
	}
	if total > DefaultTokenBudget+ApproxTokens(got[len(got)-1]) {
		t.Errorf("window exceeds budget: %d tokens", total)
	}
}

func TestTrimEndsOnUserOrTool(t *testing.T) {
	msgs := []llm.ChatMessage{llm.SystemMessage("sys")}
	for i := 0; i < 10; i++ {
		msgs = append(msgs, llm.UserMessage(fmt.Sprintf("q%d", i)))
		msgs = append(msgs, llm.AssistantMessage(fmt.Sprintf("a%d", i)))
	}

	got := Trim(msgs, DefaultTokenBudget)
	last := got[len(got)-1]
	if last.Role != llm.RoleUser && last.Role != llm.RoleTool {
		t.Errorf("window ends on %q", last.Role)
	}
}

func TestTrimFallsBackWhenNoUserTurn(t *testing.T) {
	msgs := []llm.ChatMessage{llm.SystemMessage("sys")}
	for i := 0; i < 10; i++ {
		msgs = append(msgs, llm.AssistantMessage(fmt.Sprintf("step %d", i)))
	}

	got := Trim(msgs, DefaultTokenBudget)
	// No valid window exists, so the last three messages are kept,
	// plus the retained system message.
	if len(got) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(got))
	}
	if got[0].Role != llm.RoleSystem {
		t.Errorf("system message lost")
	}
	if got[len(got)-1].Content != "step 9" {
		t.Errorf("recency lost: %q", got[len(got)-1].Content)
	}
}

func TestTrimNeverEmitsRawPayload(t *testing.T) {
	payload := "data:image/png;base64," + strings.Repeat("Q", 4000)
	msgs := []llm.ChatMessage{
		llm.SystemMessage("sys"),
		llm.UserMessage("圖一 " + payload),
		llm.AssistantMessage("收到"),
		llm.UserMessage("圖二 " + payload),
		llm.AssistantMessage("收到"),
		llm.UserMessage("描述一下"),
	}

	for _, m := range Trim(msgs, DefaultTokenBudget) {
		if strings.Contains(m.Content, strings.Repeat("Q", 64)) {
			t.Fatalf("raw payload leaked in %q role message", m.Role)
		}
	}
}

func TestTrimCount(t *testing.T) {
	msgs := []llm.ChatMessage{llm.SystemMessage("sys")}
	for i := 0; i < 40; i++ {
		msgs = append(msgs, llm.UserMessage(fmt.Sprintf("m%d", i)))
	}

	got := TrimCount(msgs, 25)
	if len(got) != 26 {
		t.Fatalf("expected 25 plus system, got %d", len(got))
	}
	if got[0].Role != llm.RoleSystem {
		t.Error("system message lost")
	}
	if got[len(got)-1].Content != "m39" {
		t.Errorf("recency lost: %q", got[len(got)-1].Content)
	}
}
