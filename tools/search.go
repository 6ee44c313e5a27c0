// Grounded search tool backed by Gemini with Google Search grounding.
//
// Returns text content, grounding sources, and search suggestions as a JSON
// result. API failures are reported in the result's error field, never raised
// across the tool boundary.

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// GroundedSearchTool performs web-grounded search via the Gemini API.
type GroundedSearchTool struct {
	client *genai.Client
	model  string
}

// NewGroundedSearchTool creates a grounded search tool.
func NewGroundedSearchTool(client *genai.Client, model string) *GroundedSearchTool {
	return &GroundedSearchTool{client: client, model: model}
}

type groundedSearchArgs struct {
	Query     string `json:"query"`
	ModelName string `json:"model_name,omitempty"`
}

// GroundingSource is one cited web source from a grounded response.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// SearchResult is the structured output of a grounded search.
type SearchResult struct {
	TextContent       string            `json:"text_content"`
	GroundingSources  []GroundingSource `json:"grounding_sources"`
	SearchSuggestions []string          `json:"search_suggestions"`
	Error             string            `json:"error,omitempty"`
}

// Metadata returns tool metadata.
func (t *GroundedSearchTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "perform_grounded_search",
		Description: "使用 Gemini API 搭配 Google 搜尋進行網路搜索，返回文字內容、來源引用與搜尋建議",
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "搜尋查詢", Required: true},
			{Name: "model_name", ParamType: "string", Description: "使用的模型名稱", Required: false},
		},
	}
}

// Execute runs the grounded search.
func (t *GroundedSearchTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var params groundedSearchArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return FailureResultf("invalid arguments: %v", err), nil
	}
	if params.Query == "" {
		return FailureResultf("query must not be empty"), nil
	}

	model := params.ModelName
	if model == "" {
		model = t.model
	}

	result := t.search(ctx, model, params.Query)

	payload, err := json.Marshal(result)
	if err != nil {
		return FailureResultf("failed to encode search result: %v", err), nil
	}
	return SuccessResult(string(payload)), nil
}

// search performs the grounded generate call. All API failures land in the
// result's Error field.
func (t *GroundedSearchTool) search(ctx context.Context, model, query string) SearchResult {
	result := SearchResult{
		GroundingSources:  []GroundingSource{},
		SearchSuggestions: []string{},
	}

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	contents := []*genai.Content{genai.NewContentFromText(query, genai.RoleUser)}

	response, err := t.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		result.Error = fmt.Sprintf("執行 Gemini grounding 搜尋時發生錯誤: %v", err)
		return result
	}

	if len(response.Candidates) == 0 {
		result.Error = "Gemini API 回應無效 (缺少候選項目)"
		return result
	}

	candidate := response.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				if result.TextContent != "" {
					result.TextContent += "\n"
				}
				result.TextContent += part.Text
			}
		}
	}

	if metadata := candidate.GroundingMetadata; metadata != nil {
		result.SearchSuggestions = append(result.SearchSuggestions, metadata.WebSearchQueries...)
		for _, chunk := range metadata.GroundingChunks {
			if chunk.Web != nil && chunk.Web.URI != "" {
				result.GroundingSources = append(result.GroundingSources, GroundingSource{
					URI:   chunk.Web.URI,
					Title: chunk.Web.Title,
				})
			}
		}
	}

	if result.TextContent == "" && len(result.GroundingSources) == 0 {
		result.Error = "[Gemini 未提供有效回覆]"
	}

	return result
}

// Verify GroundedSearchTool implements Tool
var _ Tool = (*GroundedSearchTool)(nil)
