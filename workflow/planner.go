package workflow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/planweave/planweave/history"
	"github.com/planweave/planweave/llm"
	"github.com/planweave/planweave/memory"
)

// Fixed degradation texts. Model failures and empty outputs never surface
// as errors; they surface as these messages.
const (
	// ApologyMessage is the planner's output when the model call fails.
	ApologyMessage = "很抱歉，處理您的請求時遇到了技術問題。請稍後再試。"
	// emptyNoToolsMessage replaces an empty model output when no tool
	// results are in the window.
	emptyNoToolsMessage = "我已完成分析。如果您有特定問題，請告訴我。"

	// Prompt repair texts appended when the sequence would end on an
	// assistant or system message, which the model API rejects.
	repairAfterTools = "請基於上述工具分析結果，提供完整的回答。"
	repairDefault    = "請協助處理這個請求。"

	// imageToolName is the tool whose recent results feed the generated-file
	// side channel.
	imageToolName = "generate_gemini_image"

	// sideChannelWindow is how many trailing messages are scanned for
	// generated images.
	sideChannelWindow = 5

	// summaryExcerptLength bounds the tool-result excerpt quoted when the
	// model returns empty output.
	summaryExcerptLength = 500
	// longResultThreshold separates results worth excerpting from results
	// short enough to quote whole.
	longResultThreshold = 100
)

// Planner is the planning/integration agent. Each run it builds a prompt
// from trimmed history plus recalled memory, invokes the model, and emits
// either a plan step requesting tools or a final integrated answer.
type Planner struct {
	client      *llm.Client
	prompt      string
	gateway     *memory.Gateway
	userID      string
	tokenBudget int
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithMemory attaches a long-term memory gateway for the given user.
func WithMemory(gateway *memory.Gateway, userID string) PlannerOption {
	return func(p *Planner) {
		p.gateway = gateway
		p.userID = userID
	}
}

// WithTokenBudget overrides the history token budget.
func WithTokenBudget(budget int) PlannerOption {
	return func(p *Planner) { p.tokenBudget = budget }
}

// NewPlanner creates a planner with the given model client and system prompt.
func NewPlanner(client *llm.Client, prompt string, opts ...PlannerOption) *Planner {
	p := &Planner{
		client:      client,
		prompt:      prompt,
		tokenBudget: history.DefaultTokenBudget,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PlanResult is one planner invocation's output.
type PlanResult struct {
	Response       llm.ChatMessage
	GeneratedFiles []GeneratedFile
}

// Run invokes the planner over the current state. It never returns an
// error: model failures degrade to ApologyMessage and empty outputs are
// substituted with a canned summary, so the loop always receives a usable
// assistant message.
func (p *Planner) Run(ctx context.Context, state State) PlanResult {
	prompt := p.prompt
	if block := p.recallMemory(ctx, state); block != "" {
		prompt = prompt + block
	}

	generatedFiles := collectGeneratedImages(state.Messages)

	promptMessages := p.buildPrompt(prompt, state.Messages)

	content, err := p.client.Chat(ctx, promptMessages)
	if err != nil {
		// Sole fatal-error containment boundary: the turn degrades to a
		// canned apology with nothing attached.
		return PlanResult{Response: llm.AssistantMessage(ApologyMessage)}
	}

	if isBlank(content) {
		content = substituteEmptyOutput(promptMessages)
	}
	out := llm.AssistantMessage(content)

	if len(state.Messages) >= 3 {
		p.saveMemory(ctx, content)
	}

	return PlanResult{Response: out, GeneratedFiles: generatedFiles}
}

// recallMemory returns a formatted memory block for the latest user
// message, or "" when memory is disabled or the message does not warrant
// recall.
func (p *Planner) recallMemory(ctx context.Context, state State) string {
	if p.gateway == nil || len(state.Messages) < 2 {
		return ""
	}
	last, ok := state.LastUserMessage()
	if !ok {
		return ""
	}
	return p.gateway.RecallContext(ctx, p.userID, last.Content)
}

// saveMemory records a preference excerpt from the response, best-effort.
func (p *Planner) saveMemory(ctx context.Context, content string) {
	if p.gateway == nil {
		return
	}
	p.gateway.SaveInteraction(ctx, p.userID, content)
}

// buildPrompt assembles system prompt + trimmed history, then repairs the
// tail so the sequence ends on a user or tool message.
func (p *Planner) buildPrompt(prompt string, messages []llm.ChatMessage) []llm.ChatMessage {
	trimmed := history.Trim(messages, p.tokenBudget)

	out := make([]llm.ChatMessage, 0, len(trimmed)+2)
	out = append(out, llm.SystemMessage(prompt))
	for _, msg := range trimmed {
		if msg.Role == llm.RoleSystem {
			continue
		}
		out = append(out, msg)
	}

	last := out[len(out)-1]
	if last.Role != llm.RoleUser && last.Role != llm.RoleTool {
		if hasToolMessage(out) {
			out = append(out, llm.UserMessage(repairAfterTools))
		} else {
			out = append(out, llm.UserMessage(repairDefault))
		}
	}
	return out
}

// substituteEmptyOutput builds a replacement answer when the model returns
// blank content, quoting the latest tool result when one exists.
func substituteEmptyOutput(promptMessages []llm.ChatMessage) string {
	var latest string
	for _, msg := range promptMessages {
		if msg.Role == llm.RoleTool {
			latest = msg.Content
		}
	}
	if latest == "" {
		return emptyNoToolsMessage
	}

	if runes := []rune(latest); len(runes) > longResultThreshold {
		excerpt := latest
		if len(runes) > summaryExcerptLength {
			excerpt = string(runes[:summaryExcerptLength])
		}
		return fmt.Sprintf("基於詳細的分析結果，我可以為您總結以下要點：\n\n%s...\n\n如需了解更多細節或有具體問題，請隨時告訴我。", excerpt)
	}
	return fmt.Sprintf("根據分析結果：\n\n%s\n\n這就是我對您問題的回答。還有其他問題嗎？", latest)
}

// toolResultPayload mirrors the JSON shape tool results are serialized with.
type toolResultPayload struct {
	GeneratedFiles []struct {
		Filename string `json:"filename"`
		Path     string `json:"path"`
		Type     string `json:"type"`
	} `json:"generated_files"`
}

// collectGeneratedImages scans recent tool results from the image tool and
// re-encodes the files they reference as inline data URIs. Any parse or
// I/O failure silently drops that attachment.
func collectGeneratedImages(messages []llm.ChatMessage) []GeneratedFile {
	var out []GeneratedFile
	for _, msg := range recentWindow(messages, sideChannelWindow) {
		if msg.Role != llm.RoleTool || msg.Name != imageToolName {
			continue
		}

		var payload toolResultPayload
		if err := json.Unmarshal([]byte(msg.Content), &payload); err != nil {
			continue
		}
		for _, file := range payload.GeneratedFiles {
			data, err := os.ReadFile(file.Path)
			if err != nil {
				continue
			}
			encoded := base64.StdEncoding.EncodeToString(data)
			out = append(out, GeneratedFile{
				Filename:   filepath.Base(file.Filename),
				Path:       file.Path,
				Type:       file.Type,
				InlineData: fmt.Sprintf("data:%s;base64,%s", file.Type, encoded),
			})
		}
	}
	return out
}

func hasToolMessage(messages []llm.ChatMessage) bool {
	for _, msg := range messages {
		if msg.Role == llm.RoleTool {
			return true
		}
	}
	return false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
