package pronounce

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// LLMVerifier calls an OpenAI-compatible chat completion endpoint to verify
// katakana readings, following the same structured-JSON-response idiom the
// script synthesizer uses for its own LLM calls.
type LLMVerifier struct {
	client *openai.Client
	model  string
}

func NewLLMVerifier(apiKey, baseURL, model string) *LLMVerifier {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &LLMVerifier{client: openai.NewClientWithConfig(cfg), model: model}
}

type verifyResponse struct {
	Readings map[string]string `json:"readings"`
}

func (v *LLMVerifier) VerifyReadings(ctx context.Context, tokens []Token, contextText string) (map[string]string, error) {
	surfaces := make([]string, len(tokens))
	for i, t := range tokens {
		surfaces[i] = t.Surface
	}

	const systemPrompt = `You verify katakana pronunciation of Japanese words for a text-to-speech pipeline. Given surrounding context and a list of surface forms, respond with JSON {"readings": {"surface": "reading"}} giving one katakana reading per surface form. Use the long vowel mark (ー) where appropriate. Readings must contain only katakana characters, no spaces or romaji.`
	userPrompt := fmt.Sprintf("Context:\n%s\n\nWords to resolve: %s", contextText, strings.Join(surfaces, ", "))

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pronunciation verification request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from pronunciation verifier")
	}

	raw := resp.Choices[0].Message.Content
	var parsed verifyResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("[pronounce] failed to parse verifier response: %v", err)
		return nil, fmt.Errorf("failed to parse verifier response: %w", err)
	}

	return parsed.Readings, nil
}
