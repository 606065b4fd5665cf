package scriptgen

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bobarin/kobanashi/internal/models"
)

// Generator drives one LLM call per language, following the teacher's
// CreateChatCompletion-with-JSON-mode idiom from internal/services/openai.go.
type Generator struct {
	client *openai.Client
	model  string
}

func NewGenerator(apiKey, baseURL, model string) *Generator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Generator{client: openai.NewClientWithConfig(cfg), model: model}
}

// GenerateScript drives one LLM call and parses its response into a
// validated VideoScript for a single language.
func (g *Generator) GenerateScript(ctx context.Context, in PromptInput) (*models.VideoScript, error) {
	system, user := BuildPrompt(in)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, models.NewScriptGenerationError(in.Language, "script generation request failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, models.NewScriptGenerationError(in.Language, "no response from script generation LLM", nil)
	}

	return ParseResponse([]byte(resp.Choices[0].Message.Content), in.Personas, in.Mode)
}

// GenerateMultilingual runs one generation per language, isolating failures
// per section 4.2: a failure on one language never aborts the others.
// Sequential by default, matching section 4.1's log-readability preference.
func (g *Generator) GenerateMultilingual(ctx context.Context, base PromptInput, languages []string) (map[string]*models.VideoScript, map[string]error) {
	scripts := make(map[string]*models.VideoScript, len(languages))
	failures := make(map[string]error)

	for _, lang := range languages {
		in := base
		in.Language = lang
		script, err := g.GenerateScript(ctx, in)
		if err != nil {
			failures[lang] = err
			continue
		}
		scripts[lang] = script
	}

	return scripts, failures
}
