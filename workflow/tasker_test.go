package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/planweave/planweave/llm"
	"github.com/planweave/planweave/tools"
)

const testImagePayload = "data:image/jpeg;base64,/9j/AAAA"

func TestTaskerOverridesQueryWithDirective(t *testing.T) {
	search := &fakeTool{
		name:   "perform_grounded_search",
		result: tools.SuccessResult(strings.Repeat("台北天氣晴朗", 20)),
	}
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		toolCallResponse("c1", "perform_grounded_search", `{"query":"模型自己的查詢"}`),
	}}
	tasker := NewTasker(llm.NewClient(provider), newTestRegistry(search), "你是執行代理", nil)

	state := NewState().Append(
		llm.UserMessage("今天台北天氣如何"),
		llm.AssistantMessage(planRequestMessage("perform_grounded_search", "查詢台北今天的天氣")),
	)
	out := tasker.Run(context.Background(), state)

	if got := search.argString("query"); got != "查詢台北今天的天氣" {
		t.Errorf("query not overridden by instruction: %q", got)
	}
	if len(out) != 2 {
		t.Fatalf("expected assistant + tool result, got %d messages", len(out))
	}
	toolMsg := out[1]
	if toolMsg.Role != llm.RoleTool || toolMsg.Name != "perform_grounded_search" || toolMsg.ToolCallID != "c1" {
		t.Errorf("tool result metadata mismatch: %+v", toolMsg)
	}
	if !strings.Contains(toolMsg.Content, "台北天氣晴朗") {
		t.Errorf("tool output missing from result: %q", toolMsg.Content)
	}
}

func TestTaskerInjectsImagePayload(t *testing.T) {
	analyze := &fakeTool{
		name:   "analyze_image",
		result: tools.SuccessResult("圖片顯示一隻橘貓坐在窗邊。"),
	}
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		toolCallResponse("c1", "analyze_image", `{"prompt":"原始提示"}`),
	}}
	tasker := NewTasker(llm.NewClient(provider), newTestRegistry(analyze), "你是執行代理", nil)

	state := NewState().Append(
		llm.UserMessage("描述這張圖片 "+testImagePayload),
		llm.AssistantMessage(planRequestMessage("analyze_image", "描述這張圖片")),
	)
	tasker.Run(context.Background(), state)

	if got := analyze.argString("image_input"); got != testImagePayload {
		t.Errorf("image payload not injected: %q", got)
	}
	if got := analyze.argString("prompt"); got != "描述這張圖片" {
		t.Errorf("prompt not overridden: %q", got)
	}
}

func TestTaskerInjectsImageIntoMultimodalArg(t *testing.T) {
	multi := &fakeTool{
		name:   "analyze_multimodal_content",
		result: tools.SuccessResult("分析完成"),
	}
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		toolCallResponse("c1", "analyze_multimodal_content", `{"query":"整理重點"}`),
	}}
	tasker := NewTasker(llm.NewClient(provider), newTestRegistry(multi), "你是執行代理", nil)

	state := NewState().Append(
		llm.ChatMessage{Role: llm.RoleUser, Content: "看看這個", Parts: []llm.ContentPart{
			{Type: "text", Text: "看看這個"},
			{Type: "image_url", ImageURL: testImagePayload},
		}},
		llm.AssistantMessage(planRequestMessage("analyze_multimodal_content", "整理重點")),
	)
	tasker.Run(context.Background(), state)

	if got := multi.argString("image_data"); got != testImagePayload {
		t.Errorf("image payload not injected into image_data: %q", got)
	}
}

func TestTaskerImageStaysOutOfUnrelatedTools(t *testing.T) {
	search := &fakeTool{
		name:   "perform_grounded_search",
		result: tools.SuccessResult("結果"),
	}
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		toolCallResponse("c1", "perform_grounded_search", `{"query":"查詢"}`),
	}}
	tasker := NewTasker(llm.NewClient(provider), newTestRegistry(search), "你是執行代理", nil)

	state := NewState().Append(
		llm.UserMessage("查一下 "+testImagePayload),
		llm.AssistantMessage(planRequestMessage("perform_grounded_search", "查一下")),
	)
	tasker.Run(context.Background(), state)

	if _, ok := search.lastArgs["image_input"]; ok {
		t.Error("image payload leaked into search arguments")
	}
	if _, ok := search.lastArgs["image_data"]; ok {
		t.Error("image payload leaked into search arguments")
	}
}

func TestTaskerWrapsToolError(t *testing.T) {
	broken := &fakeTool{
		name: "perform_grounded_search",
		err:  errors.New("API 連線逾時"),
	}
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		toolCallResponse("c1", "perform_grounded_search", `{"query":"天氣"}`),
	}}
	tasker := NewTasker(llm.NewClient(provider), newTestRegistry(broken), "你是執行代理", nil)

	state := NewState().Append(
		llm.UserMessage("查天氣"),
		llm.AssistantMessage(planRequestMessage("perform_grounded_search", "查天氣")),
	)
	out := tasker.Run(context.Background(), state)

	toolMsg := out[len(out)-1]
	if toolMsg.Content != "工具執行錯誤: API 連線逾時" {
		t.Errorf("unexpected error wrapping: %q", toolMsg.Content)
	}
	if toolMsg.Role != llm.RoleTool {
		t.Errorf("error must stay a tool result, got role %q", toolMsg.Role)
	}
}

func TestTaskerReportsUnknownTool(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		toolCallResponse("c1", "summarize_everything", `{}`),
	}}
	tasker := NewTasker(llm.NewClient(provider), newTestRegistry(), "你是執行代理", nil)

	state := NewState().Append(
		llm.UserMessage("總結一下"),
		llm.AssistantMessage(planRequestMessage("summarize_everything", "總結")),
	)
	out := tasker.Run(context.Background(), state)

	toolMsg := out[len(out)-1]
	if toolMsg.Content != "未找到工具: summarize_everything" {
		t.Errorf("unexpected missing-tool text: %q", toolMsg.Content)
	}
}

func TestTaskerDirectResponseWithoutToolCalls(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		{Content: "這個請求不需要工具。"},
	}}
	tasker := NewTasker(llm.NewClient(provider), newTestRegistry(), "你是執行代理", nil)

	state := NewState().Append(llm.UserMessage("你好"))
	out := tasker.Run(context.Background(), state)

	if len(out) != 1 || out[0].Role != llm.RoleAssistant || out[0].Content != "這個請求不需要工具。" {
		t.Errorf("unexpected output: %+v", out)
	}
}

func TestTaskerDegradesOnModelFailure(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("boom")}
	tasker := NewTasker(llm.NewClient(provider), newTestRegistry(), "你是執行代理", nil)

	state := NewState().Append(llm.UserMessage("查天氣"))
	out := tasker.Run(context.Background(), state)

	if len(out) != 1 || out[0].Content != ApologyMessage {
		t.Errorf("model failure must degrade to apology: %+v", out)
	}
}

func TestTaskerBuildsInstructionPrompt(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{{Content: "ok"}}}
	tasker := NewTasker(llm.NewClient(provider), newTestRegistry(), "任務提示", nil)

	t.Run("with directive", func(t *testing.T) {
		state := NewState().Append(
			llm.UserMessage("查天氣"),
			llm.AssistantMessage(planRequestMessage("perform_grounded_search", "查詢台北天氣")),
		)
		tasker.Run(context.Background(), state)

		prompt := provider.lastCall()
		if len(prompt) != 2 || prompt[0].Role != llm.RoleSystem {
			t.Fatalf("unexpected prompt shape: %+v", prompt)
		}
		if prompt[1].Content != "執行工具調用：使用指定工具，提示詞：查詢台北天氣" {
			t.Errorf("instruction message mismatch: %q", prompt[1].Content)
		}
	})

	t.Run("with directive and image", func(t *testing.T) {
		state := NewState().Append(
			llm.UserMessage("分析 "+testImagePayload),
			llm.AssistantMessage(planRequestMessage("analyze_image", "描述圖片")),
		)
		tasker.Run(context.Background(), state)

		prompt := provider.lastCall()
		if prompt[1].Content != "執行工具調用：使用指定工具分析圖片，提示詞：描述圖片" {
			t.Errorf("image instruction mismatch: %q", prompt[1].Content)
		}
	})

	t.Run("without directive falls back to user message", func(t *testing.T) {
		state := NewState().Append(llm.UserMessage("直接查一下匯率"))
		tasker.Run(context.Background(), state)

		prompt := provider.lastCall()
		if prompt[1].Content != "直接查一下匯率" {
			t.Errorf("fallback prompt mismatch: %q", prompt[1].Content)
		}
	})
}
