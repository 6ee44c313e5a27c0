// Package history provides message normalization and history trimming for
// model prompt construction.
//
// Information Hiding:
// - Base64 payload detection and truncation rules
// - Multimodal fragment flattening
// - Token budget accounting
//
// Normalization produces a prompt-safe approximation of each message; the
// original unredacted messages stay in the conversation state for the
// task-execution path.
package history

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/planweave/planweave/llm"
)

// Markers inserted by normalization.
const (
	// TruncatedImageMarker replaces the bulk of an inline base64 payload.
	TruncatedImageMarker = "...[圖片數據已截斷，僅供識別]"
	// UploadedImageMarker flags a flattened multimodal image fragment.
	UploadedImageMarker = "[用戶上傳了圖片]"
	// UnreadableContentPlaceholder substitutes content that cannot be classified.
	UnreadableContentPlaceholder = "[無法解析的訊息內容]"

	// truncatedPrefixLen is how much of the data URI survives truncation,
	// enough for the task agent to recognize an image was provided.
	truncatedPrefixLen = 30
)

var dataURIPattern = regexp.MustCompile(`data:image/[^;]+;base64,[A-Za-z0-9+/=]+`)

// Normalize returns a prompt-safe copy of the message.
//
// Tool results pass through unchanged. Inline base64 image payloads are
// truncated to a short prefix plus a marker; multimodal fragments are
// flattened into one string. Normalize never fails: anything it cannot
// classify degrades to a fixed placeholder.
func Normalize(msg llm.ChatMessage) (out llm.ChatMessage) {
	defer func() {
		if r := recover(); r != nil {
			out = msg
			out.Parts = nil
			out.Content = UnreadableContentPlaceholder
		}
	}()

	if msg.Role == llm.RoleTool {
		return msg
	}

	if len(msg.Parts) > 0 {
		return flattenParts(msg)
	}

	if containsImagePayload(msg.Content) {
		out = msg
		out.Content = truncateImagePayloads(msg.Content)
		return out
	}

	return msg
}

// NormalizeAll normalizes a message sequence, dropping messages whose
// normalized content is empty (empty content never reaches the model).
func NormalizeAll(messages []llm.ChatMessage) []llm.ChatMessage {
	normalized := make([]llm.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		n := Normalize(msg)
		if strings.TrimSpace(n.Content) == "" {
			continue
		}
		normalized = append(normalized, n)
	}
	return normalized
}

// flattenParts joins multimodal fragments into one string, replacing image
// fragments with a marker.
func flattenParts(msg llm.ChatMessage) llm.ChatMessage {
	var textParts []string
	hasImage := false

	for _, part := range msg.Parts {
		switch part.Type {
		case "text":
			if part.Text != "" {
				textParts = append(textParts, part.Text)
			}
		case "image_url":
			if part.ImageURL != "" {
				hasImage = true
			}
		default:
			if part.Text != "" {
				textParts = append(textParts, part.Text)
			}
		}
	}

	content := strings.TrimSpace(strings.Join(textParts, " "))
	if content == "" {
		if hasImage {
			content = "請分析這張圖片"
		} else {
			content = "用戶請求"
		}
	}
	if hasImage {
		content = fmt.Sprintf("%s %s", content, UploadedImageMarker)
	}

	out := msg
	out.Parts = nil
	out.Content = content
	return out
}

// containsImagePayload reports whether content embeds an inline base64 image.
func containsImagePayload(content string) bool {
	return strings.Contains(content, "data:image/") && strings.Contains(content, "base64,")
}

// truncateImagePayloads replaces every inline payload with a short prefix and
// the truncation marker, preserving surrounding text.
func truncateImagePayloads(content string) string {
	return dataURIPattern.ReplaceAllStringFunc(content, func(uri string) string {
		if len(uri) <= truncatedPrefixLen {
			return uri + TruncatedImageMarker
		}
		return uri[:truncatedPrefixLen] + TruncatedImageMarker
	})
}

// ExtractImagePayload finds the first inline base64 image in a user message,
// checking structured fragments before raw text. Returns "" when none exists.
func ExtractImagePayload(msg llm.ChatMessage) string {
	for _, part := range msg.Parts {
		if part.Type == "image_url" && strings.HasPrefix(part.ImageURL, "data:image/") {
			return part.ImageURL
		}
	}
	return dataURIPattern.FindString(msg.Content)
}
