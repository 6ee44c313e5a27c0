// Package workflow implements the two-agent plan/execute conversation loop.
//
// Information Hiding:
// - Marker phrases and instruction grammars the agents communicate with
// - Routing predicates over the recent message window
// - Prompt construction, repair, and degradation rules
//
// One agent plans and integrates results; the other parses the plan's
// current step, invokes tools, and returns their output as tool-result
// messages. Control alternates between them based on phrase markers in the
// planner's output until the planner answers without requesting tools.
package workflow

import (
	"github.com/planweave/planweave/llm"
)

// GeneratedFile describes a file produced during a turn, optionally with an
// inline data-URI copy of its content for direct display.
type GeneratedFile struct {
	Filename   string `json:"filename"`
	Path       string `json:"path"`
	Type       string `json:"type"`
	InlineData string `json:"inline_data,omitempty"`
}

// State is the conversation state threaded through the loop. Messages are
// append-only within a turn; GeneratedFiles collects per-turn outputs.
type State struct {
	Messages       []llm.ChatMessage `json:"messages"`
	GeneratedFiles []GeneratedFile   `json:"generated_files"`
}

// NewState creates an empty conversation state.
func NewState() State {
	return State{}
}

// Append returns a copy of the state with messages added.
func (s State) Append(msgs ...llm.ChatMessage) State {
	out := State{
		Messages:       make([]llm.ChatMessage, 0, len(s.Messages)+len(msgs)),
		GeneratedFiles: s.GeneratedFiles,
	}
	out.Messages = append(out.Messages, s.Messages...)
	out.Messages = append(out.Messages, msgs...)
	return out
}

// LastMessage returns the most recent message, or false when empty.
func (s State) LastMessage() (llm.ChatMessage, bool) {
	if len(s.Messages) == 0 {
		return llm.ChatMessage{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// LastUserMessage returns the most recent user message, or false when none
// exists.
func (s State) LastUserMessage() (llm.ChatMessage, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == llm.RoleUser {
			return s.Messages[i], true
		}
	}
	return llm.ChatMessage{}, false
}

// recentWindow returns the last n messages (all of them when fewer exist).
func recentWindow(messages []llm.ChatMessage, n int) []llm.ChatMessage {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
