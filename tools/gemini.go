// Gemini toolset - shared client and registration for the Gemini-backed tools.
//
// Information Hiding:
// - API authentication and client creation
// - Data-URI and file-path decoding for image inputs
//
// The client is created once and injected into each tool; a missing API key
// fails construction (deployment defect, the one error allowed to propagate).

package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
)

// GeminiConfig holds model selection for the Gemini-backed tools.
type GeminiConfig struct {
	SearchModel string // Model for grounded search
	VisionModel string // Model for image/multimodal analysis
	ImageModel  string // Model for image generation
	OutputDir   string // Directory for generated image files
}

// DefaultGeminiConfig returns the default tool model configuration.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		SearchModel: "gemini-2.5-flash",
		VisionModel: "gemini-2.5-pro",
		ImageModel:  "gemini-2.0-flash-preview-image-generation",
		OutputDir:   "generated_images",
	}
}

// GeminiToolset owns the genai client shared by all Gemini-backed tools.
type GeminiToolset struct {
	client *genai.Client
	config GeminiConfig
}

// NewGeminiToolset creates the toolset with an explicit API key.
func NewGeminiToolset(ctx context.Context, apiKey string, config GeminiConfig) (*GeminiToolset, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini toolset: API key not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini toolset: failed to initialize client: %w", err)
	}

	return &GeminiToolset{client: client, config: config}, nil
}

// NewGeminiToolsetFromEnv creates the toolset reading GEMINI_API_KEY from the
// environment. A missing key is a fatal configuration error.
func NewGeminiToolsetFromEnv(ctx context.Context, config GeminiConfig) (*GeminiToolset, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("gemini toolset: GEMINI_API_KEY environment variable not set")
	}
	return NewGeminiToolset(ctx, apiKey, config)
}

// All returns every tool in the set.
func (ts *GeminiToolset) All() []Tool {
	return []Tool{
		NewGroundedSearchTool(ts.client, ts.config.SearchModel),
		NewImageGenerationTool(ts.client, ts.config.ImageModel, ts.config.OutputDir),
		NewAnalyzeImageTool(ts.client, ts.config.VisionModel),
		NewMultimodalTool(ts.client, ts.config.VisionModel),
		NewAnalyzeVideoTool(),
		NewAnalyzeDocumentTool(),
	}
}

// Register registers the named tools into the registry.
// An empty name list registers the whole set.
func (ts *GeminiToolset) Register(registry *Registry, enabled []string) error {
	want := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		want[name] = true
	}

	for _, tool := range ts.All() {
		if len(enabled) > 0 && !want[tool.Metadata().Name] {
			continue
		}
		if err := registry.Register(tool); err != nil {
			return fmt.Errorf("failed to register tools: %w", err)
		}
	}
	return nil
}

// imagePart decodes an image input (base64 data URI or file path) into a
// genai content part. Returns nil with no error for empty input.
func imagePart(input string) (*genai.Part, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	if strings.HasPrefix(input, "data:image/") {
		mimeType, data, err := decodeDataURI(input)
		if err != nil {
			return nil, err
		}
		return genai.NewPartFromBytes(data, mimeType), nil
	}

	if _, err := os.Stat(input); err == nil {
		mimeType := mime.TypeByExtension(filepath.Ext(input))
		if !strings.HasPrefix(mimeType, "image/") {
			return nil, fmt.Errorf("unsupported image file type: %q", mimeType)
		}
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, fmt.Errorf("failed to read image file: %w", err)
		}
		return genai.NewPartFromBytes(data, mimeType), nil
	}

	return nil, fmt.Errorf("unrecognized image input format")
}

// decodeDataURI splits a data URI like data:image/jpeg;base64,... into its
// MIME type and decoded payload.
func decodeDataURI(uri string) (string, []byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI")
	}
	mimeType := strings.TrimPrefix(strings.SplitN(header, ";", 2)[0], "data:")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return mimeType, data, nil
}
