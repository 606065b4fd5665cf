package slides

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const geminiImageModel = "gemini-3-pro-image-preview"

// ImageClient generates a single slide image from a text prompt. The
// production implementation talks to Gemini's image-preview model;
// Producer holds any ImageClient, which keeps tests off the network.
type ImageClient interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// geminiClient mirrors the teacher's GeminiService request/response shape
// (inlineData image parts over the generateContent REST endpoint), trimmed
// to the single text-to-image call the slide producer needs — no style
// reference image, since section 4.6 sends style guidance as a system-level
// text block shared across the whole batch instead.
type geminiClient struct {
	apiKey string
	model  string
	client *http.Client
}

func newGeminiClient(apiKey, model string) *geminiClient {
	if model == "" {
		model = geminiImageModel
	}
	return &geminiClient{apiKey: apiKey, model: model, client: &http.Client{Timeout: 300 * time.Second}}
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiInline   `json:"inlineData,omitempty"`
}

type geminiInline struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string         `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageSize `json:"imageConfig,omitempty"`
}

type geminiImageSize struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text       string        `json:"text,omitempty"`
				InlineData *geminiInline `json:"inlineData,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateImage sends prompt (already composed with shared style
// instructions by the caller) and expects a single inline PNG back.
func (g *geminiClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			ImageConfig:        &geminiImageSize{AspectRatio: "16:9", ImageSize: "4K"},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	for _, part := range parsed.Candidates[0].Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			return base64.StdEncoding.DecodeString(part.InlineData.Data)
		}
	}
	return nil, fmt.Errorf("gemini returned no inline image data")
}
