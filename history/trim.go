package history

import (
	"errors"

	"github.com/planweave/planweave/llm"
)

// Trimming defaults.
const (
	// DefaultTokenBudget caps the approximate token count of trimmed history.
	DefaultTokenBudget = 2000
	// keepAllThreshold is the message count at or below which history is
	// passed through untrimmed.
	keepAllThreshold = 5
	// fallbackTail is the window used when budget trimming keeps too little.
	fallbackTail = 5
	// errorTail is the window used when budget trimming cannot satisfy its
	// boundary constraints at all.
	errorTail = 3
)

var errNoValidWindow = errors.New("history: no window satisfies trim boundaries")

// ApproxTokens estimates the token count of a message at roughly four
// characters per token, plus a small per-message overhead.
func ApproxTokens(msg llm.ChatMessage) int {
	chars := len([]rune(msg.Content))
	for _, part := range msg.Parts {
		chars += len([]rune(part.Text)) + len([]rune(part.ImageURL))
	}
	return chars/4 + 3
}

// Trim normalizes messages and reduces them to fit budget approximate tokens.
//
// Sequences of five or fewer messages pass through unchanged. Otherwise a
// suffix window is selected that starts on a user message, ends on a user or
// tool message, and fits the budget; a leading system message is always
// retained. When the budget window keeps fewer than two messages the last
// five are used instead, and when no window satisfies the boundary rules the
// last three are used.
func Trim(messages []llm.ChatMessage, budget int) []llm.ChatMessage {
	if budget <= 0 {
		budget = DefaultTokenBudget
	}

	normalized := NormalizeAll(messages)
	if len(normalized) <= keepAllThreshold {
		return normalized
	}

	trimmed, err := trimToBudget(normalized, budget)
	if err != nil {
		return lastN(normalized, errorTail)
	}
	if len(trimmed) < 2 {
		return lastN(normalized, fallbackTail)
	}
	return trimmed
}

// TrimCount is the count-capped variant: it normalizes and keeps at most max
// messages from the end, always retaining a leading system message.
func TrimCount(messages []llm.ChatMessage, max int) []llm.ChatMessage {
	normalized := NormalizeAll(messages)
	if max <= 0 || len(normalized) <= max {
		return normalized
	}
	return withSystem(normalized, normalized[len(normalized)-max:])
}

// trimToBudget selects the largest suffix window within the token budget
// whose first message is from the user and whose last message is from the
// user or a tool.
func trimToBudget(messages []llm.ChatMessage, budget int) ([]llm.ChatMessage, error) {
	// Drop trailing messages until the window ends on a user or tool turn.
	end := len(messages)
	for end > 0 {
		role := messages[end-1].Role
		if role == llm.RoleUser || role == llm.RoleTool {
			break
		}
		end--
	}
	if end == 0 {
		return nil, errNoValidWindow
	}

	// Walk backwards accumulating tokens until the budget is spent.
	start := end
	total := 0
	for start > 0 {
		cost := ApproxTokens(messages[start-1])
		if total+cost > budget && start < end {
			break
		}
		total += cost
		start--
	}

	// Advance to the first user message so the window opens on a user turn.
	for start < end && messages[start].Role != llm.RoleUser {
		start++
	}
	if start >= end {
		return nil, errNoValidWindow
	}

	return withSystem(messages, messages[start:end]), nil
}

// lastN keeps the final n messages, retaining a leading system message.
func lastN(messages []llm.ChatMessage, n int) []llm.ChatMessage {
	if len(messages) <= n {
		return messages
	}
	return withSystem(messages, messages[len(messages)-n:])
}

// withSystem prepends the original leading system message to a window that
// lost it.
func withSystem(all, window []llm.ChatMessage) []llm.ChatMessage {
	if len(all) == 0 || all[0].Role != llm.RoleSystem {
		return window
	}
	if len(window) > 0 && window[0].Role == llm.RoleSystem {
		return window
	}
	out := make([]llm.ChatMessage, 0, len(window)+1)
	out = append(out, all[0])
	out = append(out, window...)
	return out
}
