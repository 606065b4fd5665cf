package videobg

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	defaultVeoModel    = "veo-3.1-generate-preview"
	veoPollInterval    = 10 * time.Second
	veoMaxPollDuration = 5 * time.Minute
)

// VeoGenerator generates a background video via Google's Veo model,
// optionally conditioned on a first-frame still image (e.g. a rendered
// slide used as the opening frame of a looping background).
type VeoGenerator struct {
	apiKey string
	model  string
}

func NewVeoGenerator(apiKey, model string) *VeoGenerator {
	if model == "" {
		model = defaultVeoModel
	}
	return &VeoGenerator{apiKey: apiKey, model: model}
}

// GenerateVideo starts an async Veo operation and polls it to completion.
// firstFrame may be nil for a pure text-to-video background.
func (s *VeoGenerator) GenerateVideo(ctx context.Context, prompt string, firstFrame []byte, firstFrameMimeType string) ([]byte, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	enhancedPrompt := fmt.Sprintf("%s\n\nGenerate a slow, ambient, seamlessly loopable background video. No generated audio or dialogue. Silent video only.", prompt)

	var image *genai.Image
	if len(firstFrame) > 0 {
		image = &genai.Image{ImageBytes: firstFrame, MIMEType: firstFrameMimeType}
	}

	config := &genai.GenerateVideosConfig{
		AspectRatio:      "16:9",
		Resolution:       "1080p",
		PersonGeneration: "allow_adult",
		NumberOfVideos:   1,
	}

	log.Printf("[videobg/veo] starting background video generation (model=%s, promptLen=%d, hasFirstFrame=%v)", s.model, len(prompt), image != nil)

	operation, err := client.Models.GenerateVideos(ctx, s.model, enhancedPrompt, image, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start video generation: %w", err)
	}

	deadline := time.Now().Add(veoMaxPollDuration)
	pollCount := 0
	for !operation.Done {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("background video generation timed out after %v (polled %d times)", veoMaxPollDuration, pollCount)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("background video generation cancelled: %w", ctx.Err())
		case <-time.After(veoPollInterval):
		}

		pollCount++
		operation, err = client.Operations.GetVideosOperation(ctx, operation, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to poll operation (attempt %d): %w", pollCount, err)
		}
	}

	if operation.Error != nil && len(operation.Error) > 0 {
		errJSON, _ := json.Marshal(operation.Error)
		return nil, fmt.Errorf("video generation operation failed: %s", string(errJSON))
	}
	if operation.Response == nil {
		return nil, fmt.Errorf("no response in completed operation after %d polls", pollCount)
	}
	if operation.Response.RAIMediaFilteredCount > 0 {
		reasons := "unknown"
		if len(operation.Response.RAIMediaFilteredReasons) > 0 {
			reasons = strings.Join(operation.Response.RAIMediaFilteredReasons, ", ")
		}
		return nil, fmt.Errorf("video blocked by safety filters: %d filtered, reasons: %s", operation.Response.RAIMediaFilteredCount, reasons)
	}
	if len(operation.Response.GeneratedVideos) == 0 {
		return nil, fmt.Errorf("no videos in response")
	}

	video := operation.Response.GeneratedVideos[0]
	if video.Video == nil {
		return nil, fmt.Errorf("generated video object is nil")
	}

	downloadURI := genai.NewDownloadURIFromVideo(video.Video)
	videoBytes, err := client.Files.Download(ctx, downloadURI, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download generated video: %w", err)
	}
	if len(videoBytes) == 0 {
		return nil, fmt.Errorf("downloaded video is empty")
	}

	log.Printf("[videobg/veo] background video generated (%d bytes, %d polls)", len(videoBytes), pollCount)
	return videoBytes, nil
}
