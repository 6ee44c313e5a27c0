package memory

import (
	"context"
	"fmt"
	"strings"
)

// Heuristic keyword sets. These are substring gates, not classifiers;
// missed recalls and unnecessary searches are both acceptable.
var (
	// recallKeywords signal self-reference in a user message.
	recallKeywords = []string{"我", "你記得", "之前", "上次", "習慣", "喜歡", "偏好"}
	// saveKeywords signal a stated personal preference in a response.
	saveKeywords = []string{"我喜歡", "我偏好", "我習慣", "重要的是"}
)

const (
	// recallMinLength gates recall on messages long enough to carry context.
	recallMinLength = 10
	// recallLimit bounds how many records a recall injects into the prompt.
	recallLimit = 2
	// saveExcerptLength bounds the excerpt stored from a response.
	saveExcerptLength = 100

	memoryHeader      = "## 相關記憶"
	interactionPrefix = "使用者互動記錄: "
)

// Gateway mediates between the workflow and a Store: it decides when to
// recall, formats recalled records for prompt injection, and saves
// preference excerpts fire-and-forget.
type Gateway struct {
	store Store
}

// NewGateway creates a gateway over the given store.
func NewGateway(store Store) *Gateway {
	return &Gateway{store: store}
}

// RecallContext returns a formatted memory block for the latest user
// message, or "" when the message does not warrant recall or nothing is
// stored. Underlying store failures also yield "" — recall never blocks a
// turn.
func (g *Gateway) RecallContext(ctx context.Context, userID, latestUserContent string) string {
	if g == nil || g.store == nil {
		return ""
	}
	if !ShouldRecall(latestUserContent) {
		return ""
	}

	records, err := g.store.Search(ctx, userID, latestUserContent, recallLimit)
	if err != nil || len(records) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(memoryHeader)
	sb.WriteString("\n")
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("- %s\n", rec.Text))
	}
	return sb.String()
}

// SaveInteraction saves a preference excerpt from a response when it
// contains a save keyword. Fire-and-forget: failures are swallowed and the
// write happens on a separate goroutine.
func (g *Gateway) SaveInteraction(ctx context.Context, userID, responseContent string) {
	if g == nil || g.store == nil {
		return
	}
	if !ShouldSave(responseContent) {
		return
	}

	excerpt := responseContent
	if runes := []rune(excerpt); len(runes) > saveExcerptLength {
		excerpt = string(runes[:saveExcerptLength])
	}
	rec := NewRecord(interactionPrefix+excerpt, TypeInteraction)

	go func() {
		// Errors are deliberately dropped: memory is best-effort.
		_ = g.store.Put(context.WithoutCancel(ctx), userID, rec)
	}()
}

// ShouldRecall reports whether a user message warrants a memory search.
func ShouldRecall(content string) bool {
	if len([]rune(content)) <= recallMinLength {
		return false
	}
	return containsAny(content, recallKeywords)
}

// ShouldSave reports whether a response states a preference worth keeping.
func ShouldSave(content string) bool {
	return containsAny(content, saveKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
