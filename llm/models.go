// Package llm provides shared data models for LLM providers.
package llm

import "encoding/json"

// Message roles used across the workflow.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ContentPart is one fragment of multimodal message content.
// Type is "text" or "image_url"; exactly one of Text/ImageURL is set.
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// ChatMessage represents a chat message with role and content.
//
// Content holds the flat text form consumed by providers. Parts, when
// non-empty, holds the original multimodal fragments of a user message
// (text and inline data-URI images) before normalization flattens them.
type ChatMessage struct {
	Role       string        `json:"role"`
	Content    string        `json:"content"`
	Parts      []ContentPart `json:"parts,omitempty"`
	Name       string        `json:"name,omitempty"`         // Tool name for tool result messages
	ToolCalls  []ToolCall    `json:"tool_calls,omitempty"`   // For assistant messages with tool calls
	ToolCallID string        `json:"tool_call_id,omitempty"` // For tool result messages
}

// HasImagePart reports whether any multimodal fragment carries an image.
func (m ChatMessage) HasImagePart() bool {
	for _, p := range m.Parts {
		if p.Type == "image_url" && p.ImageURL != "" {
			return true
		}
	}
	return false
}

// ToolCall represents a tool call from the LLM.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolDefinition defines a tool that the LLM can call.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// SystemMessage creates a system message.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{
		Role:    RoleSystem,
		Content: content,
	}
}

// UserMessage creates a user message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{
		Role:    RoleUser,
		Content: content,
	}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{
		Role:    RoleAssistant,
		Content: content,
	}
}

// ToolResultMessage creates a tool result message for a named tool call.
func ToolResultMessage(name, toolCallID, content string) ChatMessage {
	return ChatMessage{
		Role:       RoleTool,
		Content:    content,
		Name:       name,
		ToolCallID: toolCallID,
	}
}

// LLMResponse represents a response from an LLM provider.
type LLMResponse struct {
	Content   string
	ToolCalls []ToolCall // Tool calls requested by the LLM
	Usage     *TokenUsage
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	PromptTokens     uint32
	CompletionTokens uint32
	TotalTokens      uint32
}
