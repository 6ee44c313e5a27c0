package workflow

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/planweave/planweave/llm"
	"github.com/planweave/planweave/tools"
)

// scriptedProvider replays a fixed sequence of responses across Chat and
// ChatWithTools, repeating the last one when the script runs out. Calls
// are recorded for prompt assertions.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []llm.LLMResponse
	err       error
	calls     [][]llm.ChatMessage
	idx       int
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "scripted-1" }

func (p *scriptedProvider) next(messages []llm.ChatMessage) (llm.LLMResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	copied := make([]llm.ChatMessage, len(messages))
	copy(copied, messages)
	p.calls = append(p.calls, copied)

	if p.err != nil {
		return llm.LLMResponse{}, p.err
	}
	if len(p.responses) == 0 {
		return llm.LLMResponse{}, nil
	}
	resp := p.responses[p.idx]
	if p.idx < len(p.responses)-1 {
		p.idx++
	}
	return resp, nil
}

func (p *scriptedProvider) Chat(_ context.Context, messages []llm.ChatMessage) (llm.LLMResponse, error) {
	return p.next(messages)
}

func (p *scriptedProvider) ChatWithTools(_ context.Context, messages []llm.ChatMessage, _ []llm.ToolDefinition) (llm.LLMResponse, error) {
	return p.next(messages)
}

func (p *scriptedProvider) StreamChat(_ context.Context, _ []llm.ChatMessage, chunks chan<- string) (*llm.TokenUsage, error) {
	close(chunks)
	return nil, nil
}

func (p *scriptedProvider) lastCall() []llm.ChatMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return nil
	}
	return p.calls[len(p.calls)-1]
}

// fakeTool is a scriptable tool that records the arguments it was invoked
// with.
type fakeTool struct {
	name     string
	result   tools.ToolResult
	err      error
	mu       sync.Mutex
	lastArgs map[string]interface{}
}

func (t *fakeTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{
		Name:        t.name,
		Description: "test tool",
		Parameters: []tools.ToolParameter{
			{Name: "query", ParamType: "string", Description: "query", Required: false},
			{Name: "prompt", ParamType: "string", Description: "prompt", Required: false},
		},
	}
}

func (t *fakeTool) Execute(_ context.Context, args json.RawMessage) (tools.ToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastArgs = map[string]interface{}{}
	_ = json.Unmarshal(args, &t.lastArgs)
	if t.err != nil {
		return tools.ToolResult{}, t.err
	}
	return t.result, nil
}

func (t *fakeTool) argString(key string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, _ := t.lastArgs[key].(string)
	return s
}

func newTestRegistry(fakes ...*fakeTool) *tools.Registry {
	registry := tools.NewRegistry()
	for _, f := range fakes {
		_ = registry.Register(f)
	}
	return registry
}

func planRequestMessage(tool, description string) string {
	return "需要工具協助：執行步驟：使用 " + tool + " 工具 - " + description
}

func toolCallResponse(id, name string, args string) llm.LLMResponse {
	return llm.LLMResponse{
		ToolCalls: []llm.ToolCall{{
			ID:        id,
			Name:      name,
			Arguments: json.RawMessage(args),
		}},
	}
}
