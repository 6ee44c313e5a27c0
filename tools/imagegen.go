// Image generation tool backed by Gemini.
//
// Generated images are written under the configured output directory and
// reported as generated-file descriptors (filename, path, MIME type) so the
// planning agent can re-encode them for display.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// ImageGenerationTool generates images via the Gemini API.
type ImageGenerationTool struct {
	client    *genai.Client
	model     string
	outputDir string
}

// NewImageGenerationTool creates an image generation tool.
func NewImageGenerationTool(client *genai.Client, model, outputDir string) *ImageGenerationTool {
	return &ImageGenerationTool{client: client, model: model, outputDir: outputDir}
}

type imageGenArgs struct {
	Prompt string `json:"prompt"`
}

type imageGenResult struct {
	Text           string          `json:"text,omitempty"`
	GeneratedFiles []GeneratedFile `json:"generated_files"`
	Error          string          `json:"error,omitempty"`
}

// Metadata returns tool metadata.
func (t *ImageGenerationTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "generate_gemini_image",
		Description: "使用 Gemini API 生成圖片，返回生成檔案的路徑資訊",
		Parameters: []ToolParameter{
			{Name: "prompt", ParamType: "string", Description: "圖片生成提示詞", Required: true},
		},
	}
}

// Execute generates an image and writes it to the output directory.
func (t *ImageGenerationTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var params imageGenArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return FailureResultf("invalid arguments: %v", err), nil
	}
	if params.Prompt == "" {
		return FailureResultf("prompt must not be empty"), nil
	}

	result := t.generate(ctx, params.Prompt)

	payload, err := json.Marshal(result)
	if err != nil {
		return FailureResultf("failed to encode generation result: %v", err), nil
	}

	return ToolResult{Output: string(payload), GeneratedFiles: result.GeneratedFiles}, nil
}

func (t *ImageGenerationTool) generate(ctx context.Context, prompt string) imageGenResult {
	result := imageGenResult{GeneratedFiles: []GeneratedFile{}}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	response, err := t.client.Models.GenerateContent(ctx, t.model, contents, config)
	if err != nil {
		result.Error = fmt.Sprintf("圖片生成失敗: %v", err)
		return result
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		result.Error = "Gemini 沒有返回圖片"
		return result
	}

	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			result.Text += part.Text
			continue
		}
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}

		file, err := t.writeImage(part.InlineData.MIMEType, part.InlineData.Data)
		if err != nil {
			result.Error = fmt.Sprintf("儲存圖片失敗: %v", err)
			continue
		}
		result.GeneratedFiles = append(result.GeneratedFiles, file)
	}

	if len(result.GeneratedFiles) == 0 && result.Error == "" {
		result.Error = "Gemini 沒有返回圖片"
	}

	return result
}

func (t *ImageGenerationTool) writeImage(mimeType string, data []byte) (GeneratedFile, error) {
	if err := os.MkdirAll(t.outputDir, 0o755); err != nil {
		return GeneratedFile{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("gemini_image_%s%s", uuid.New().String(), extensionFor(mimeType))
	path := filepath.Join(t.outputDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return GeneratedFile{}, fmt.Errorf("failed to write image file: %w", err)
	}

	return GeneratedFile{
		Filename: filename,
		Path:     path,
		Type:     mimeType,
	}, nil
}

func extensionFor(mimeType string) string {
	switch {
	case strings.HasSuffix(mimeType, "jpeg"), strings.HasSuffix(mimeType, "jpg"):
		return ".jpg"
	case strings.HasSuffix(mimeType, "webp"):
		return ".webp"
	default:
		return ".png"
	}
}

// Verify ImageGenerationTool implements Tool
var _ Tool = (*ImageGenerationTool)(nil)
