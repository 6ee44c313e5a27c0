// Multimodal analysis tools backed by Gemini vision models.
//
// analyze_image accepts a base64 data URI or a local file path; the general
// analyze_multimodal_content entry point delegates image inputs to it. Video
// and document analysis are placeholders, kept for interface completeness.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultImagePrompt = "請分析這張圖片"

// AnalyzeImageTool analyzes image content with a Gemini vision model.
type AnalyzeImageTool struct {
	client *genai.Client
	model  string
}

// NewAnalyzeImageTool creates an image analysis tool.
func NewAnalyzeImageTool(client *genai.Client, model string) *AnalyzeImageTool {
	return &AnalyzeImageTool{client: client, model: model}
}

type analyzeImageArgs struct {
	ImageInput string `json:"image_input"`
	Prompt     string `json:"prompt,omitempty"`
	ModelName  string `json:"model_name,omitempty"`
}

// Metadata returns tool metadata.
func (t *AnalyzeImageTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "analyze_image",
		Description: "分析圖片內容（支援 base64 data URI 和文件路徑輸入）",
		Parameters: []ToolParameter{
			{Name: "image_input", ParamType: "string", Description: "圖片輸入（base64 字符串或文件路徑）", Required: true},
			{Name: "prompt", ParamType: "string", Description: "分析提示詞", Required: false},
			{Name: "model_name", ParamType: "string", Description: "使用的模型名稱", Required: false},
		},
	}
}

// Execute analyzes the image. Failures degrade to error-describing output.
func (t *AnalyzeImageTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var params analyzeImageArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return FailureResultf("invalid arguments: %v", err), nil
	}

	if strings.TrimSpace(params.ImageInput) == "" {
		return SuccessResult("⚠️ 沒有提供圖片輸入，請確認圖片已正確上傳"), nil
	}

	prompt := params.Prompt
	if prompt == "" {
		prompt = defaultImagePrompt
	}
	model := params.ModelName
	if model == "" {
		model = t.model
	}

	return SuccessResult(t.analyze(ctx, model, params.ImageInput, prompt)), nil
}

func (t *AnalyzeImageTool) analyze(ctx context.Context, model, imageInput, prompt string) string {
	part, err := imagePart(imageInput)
	if err != nil || part == nil {
		return "⚠️ 沒有檢測到有效的圖片輸入，請確認圖片格式正確"
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt), part}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	response, err := t.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return fmt.Sprintf("圖片分析失敗: %v", err)
	}

	text := response.Text()
	if text == "" {
		return "❌ Gemini 沒有返回分析結果"
	}
	return text
}

// Verify AnalyzeImageTool implements Tool
var _ Tool = (*AnalyzeImageTool)(nil)

// MultimodalTool is the general multimodal entry point. Image inputs are
// delegated to the image analyzer; plain text queries are echoed back.
type MultimodalTool struct {
	client *genai.Client
	model  string
}

// NewMultimodalTool creates a multimodal analysis tool.
func NewMultimodalTool(client *genai.Client, model string) *MultimodalTool {
	return &MultimodalTool{client: client, model: model}
}

type multimodalArgs struct {
	Query     string `json:"query"`
	FilePaths string `json:"file_paths,omitempty"`
	ImageData string `json:"image_data,omitempty"`
	ModelName string `json:"model_name,omitempty"`
}

type multimodalResult struct {
	Response       string `json:"response"`
	FilesProcessed int    `json:"files_processed"`
	ModelUsed      string `json:"model_used"`
	InputType      string `json:"input_type"`
}

// Metadata returns tool metadata.
func (t *MultimodalTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "analyze_multimodal_content",
		Description: "分析多模態內容（圖片、影片、文檔）的通用工具",
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "要詢問的問題", Required: true},
			{Name: "file_paths", ParamType: "string", Description: "檔案路徑（多個路徑用逗號分隔）", Required: false},
			{Name: "image_data", ParamType: "string", Description: "base64 格式的圖片數據", Required: false},
			{Name: "model_name", ParamType: "string", Description: "使用的模型名稱", Required: false},
		},
	}
}

// Execute runs the multimodal analysis.
func (t *MultimodalTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var params multimodalArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return FailureResultf("invalid arguments: %v", err), nil
	}

	model := params.ModelName
	if model == "" {
		model = t.model
	}

	analyzer := &AnalyzeImageTool{client: t.client, model: model}

	var result multimodalResult
	switch {
	case params.ImageData != "":
		// Inline image data takes priority
		result = multimodalResult{
			Response:       analyzer.analyze(ctx, model, params.ImageData, params.Query),
			FilesProcessed: 1,
			ModelUsed:      model,
			InputType:      "base64_image",
		}
	case params.FilePaths != "":
		result = multimodalResult{
			Response:       analyzer.analyze(ctx, model, strings.TrimSpace(params.FilePaths), params.Query),
			FilesProcessed: 1,
			ModelUsed:      model,
			InputType:      "file_path",
		}
	default:
		result = multimodalResult{
			Response:       fmt.Sprintf("📝 純文字查詢：%s", params.Query),
			FilesProcessed: 0,
			ModelUsed:      model,
			InputType:      "text_only",
		}
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return FailureResultf("failed to encode analysis result: %v", err), nil
	}
	return SuccessResult(string(payload)), nil
}

// Verify MultimodalTool implements Tool
var _ Tool = (*MultimodalTool)(nil)

// AnalyzeVideoTool is a placeholder for video analysis.
type AnalyzeVideoTool struct{}

// NewAnalyzeVideoTool creates the video analysis placeholder.
func NewAnalyzeVideoTool() *AnalyzeVideoTool {
	return &AnalyzeVideoTool{}
}

// Metadata returns tool metadata.
func (t *AnalyzeVideoTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "analyze_video",
		Description: "影片分析工具（開發中）",
		Parameters: []ToolParameter{
			{Name: "video_path", ParamType: "string", Description: "影片檔案路徑", Required: true},
			{Name: "prompt", ParamType: "string", Description: "分析提示詞", Required: false},
		},
	}
}

// Execute returns the fixed placeholder response.
func (t *AnalyzeVideoTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	return SuccessResult("影片分析功能正在開發中"), nil
}

// AnalyzeDocumentTool is a placeholder for document analysis.
type AnalyzeDocumentTool struct{}

// NewAnalyzeDocumentTool creates the document analysis placeholder.
func NewAnalyzeDocumentTool() *AnalyzeDocumentTool {
	return &AnalyzeDocumentTool{}
}

// Metadata returns tool metadata.
func (t *AnalyzeDocumentTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "analyze_document",
		Description: "文檔分析工具（開發中）",
		Parameters: []ToolParameter{
			{Name: "document_path", ParamType: "string", Description: "文檔檔案路徑", Required: true},
			{Name: "prompt", ParamType: "string", Description: "處理提示詞", Required: false},
		},
	}
}

// Execute returns the fixed placeholder response.
func (t *AnalyzeDocumentTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	return SuccessResult("文檔分析功能正在開發中"), nil
}

var (
	_ Tool = (*AnalyzeVideoTool)(nil)
	_ Tool = (*AnalyzeDocumentTool)(nil)
)
