package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/planweave/planweave/history"
	"github.com/planweave/planweave/llm"
	"github.com/planweave/planweave/tools"
)

// Tool-result texts for dispatch failures. These are message content, not
// errors: tool problems stay inside the conversation.
const (
	toolErrorPrefix  = "工具執行錯誤: "
	toolMissingLabel = "未找到工具: "
)

// imageArgNames maps a tool name to the argument its image payload goes
// into. Tools absent from this map never receive the payload.
var imageArgNames = map[string]string{
	"analyze_image":              "image_input",
	"analyze_multimodal_content": "image_data",
}

// Tasker is the task-execution agent. It parses the planner's current
// instruction, invokes the tool-bound model, executes the requested tool
// calls, and returns their results as tool-result messages.
type Tasker struct {
	client   *llm.Client
	registry *tools.Registry
	prompt   string
	enabled  []string
}

// NewTasker creates a task agent over the given model client and tool
// registry. enabled narrows the tools bound to the model; empty means all
// registered tools.
func NewTasker(client *llm.Client, registry *tools.Registry, prompt string, enabled []string) *Tasker {
	return &Tasker{
		client:   client,
		registry: registry,
		prompt:   prompt,
		enabled:  enabled,
	}
}

// Run executes one tool step. The returned messages are the model's
// response followed by one tool-result message per requested call; when
// the model requests no calls, its direct text response alone. Model
// failures degrade to a canned apology message, and tool failures become
// error-text tool results, so Run never returns an error.
func (t *Tasker) Run(ctx context.Context, state State) []llm.ChatMessage {
	imagePayload := t.extractImagePayload(state)
	directive := t.extractDirective(state)

	promptMessages := t.buildPrompt(state, directive, imagePayload)

	response, err := t.client.ChatWithTools(ctx, promptMessages, t.registry.Definitions(t.enabled))
	if err != nil {
		return []llm.ChatMessage{llm.AssistantMessage(ApologyMessage)}
	}

	if len(response.ToolCalls) == 0 {
		return []llm.ChatMessage{llm.AssistantMessage(response.Content)}
	}

	out := make([]llm.ChatMessage, 0, len(response.ToolCalls)+1)
	assistant := llm.AssistantMessage(response.Content)
	assistant.ToolCalls = response.ToolCalls
	out = append(out, assistant)

	for _, call := range response.ToolCalls {
		content := t.dispatch(ctx, call, directive, imagePayload)
		out = append(out, llm.ToolResultMessage(call.Name, call.ID, content))
	}
	return out
}

// extractImagePayload pulls an inline image from the most recent raw user
// message. The unredacted original is used here, not the normalized copy.
func (t *Tasker) extractImagePayload(state State) string {
	last, ok := state.LastUserMessage()
	if !ok {
		return ""
	}
	return history.ExtractImagePayload(last)
}

// extractDirective finds the most recent planner message requesting tools
// and parses its instruction. A missing or malformed instruction yields a
// none directive.
func (t *Tasker) extractDirective(state State) Directive {
	for i := len(state.Messages) - 1; i >= 0; i-- {
		msg := state.Messages[i]
		if msg.Role == llm.RoleAssistant && RequestsTools(msg.Content) {
			return ParseDirective(msg.Content)
		}
	}
	return Directive{Kind: DirectiveNone}
}

// buildPrompt produces the single-turn prompt: system prompt plus one
// instruction message.
func (t *Tasker) buildPrompt(state State, directive Directive, imagePayload string) []llm.ChatMessage {
	out := []llm.ChatMessage{llm.SystemMessage(t.prompt)}

	switch {
	case directive.Description != "":
		if imagePayload != "" {
			out = append(out, llm.UserMessage(fmt.Sprintf("執行工具調用：使用指定工具分析圖片，提示詞：%s", directive.Description)))
		} else {
			out = append(out, llm.UserMessage(fmt.Sprintf("執行工具調用：使用指定工具，提示詞：%s", directive.Description)))
		}
	default:
		if last, ok := state.LastUserMessage(); ok {
			out = append(out, last)
		} else if msg, ok := state.LastMessage(); ok {
			out = append(out, msg)
		}
	}
	return out
}

// dispatch runs one tool call and returns the content for its tool-result
// message. Unknown tools and execution failures become error text.
func (t *Tasker) dispatch(ctx context.Context, call llm.ToolCall, directive Directive, imagePayload string) string {
	args := rewriteArgs(call, directive, imagePayload)

	tool, ok := t.registry.Get(call.Name)
	if !ok {
		return toolMissingLabel + call.Name
	}

	result, err := tool.Execute(ctx, args)
	if err != nil {
		return toolErrorPrefix + err.Error()
	}
	if result.Error != nil {
		return toolErrorPrefix + result.Error.Error()
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return toolErrorPrefix + err.Error()
	}
	return string(encoded)
}

// rewriteArgs applies the directive's instruction to the call's text
// argument and injects the image payload into the argument the target tool
// expects. Unparseable arguments are rebuilt from scratch.
func rewriteArgs(call llm.ToolCall, directive Directive, imagePayload string) json.RawMessage {
	args := make(map[string]interface{})
	if len(call.Arguments) > 0 {
		// Best effort; a fresh map serves when the model emits bad JSON.
		_ = json.Unmarshal(call.Arguments, &args)
	}

	if directive.Description != "" {
		if _, ok := args["prompt"]; ok {
			args["prompt"] = directive.Description
		} else if _, ok := args["query"]; ok {
			args["query"] = directive.Description
		}
	}

	if imagePayload != "" {
		if argName, ok := imageArgNames[call.Name]; ok {
			args[argName] = imagePayload
		}
	}

	encoded, err := json.Marshal(args)
	if err != nil {
		return call.Arguments
	}
	return encoded
}
