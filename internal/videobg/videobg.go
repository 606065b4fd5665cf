// Package videobg generates a background video asset when a section or the
// global config declares `background.type: video` with a `prompt` instead
// of a ready `path` (SPEC_FULL C10). It is genuinely optional: most runs
// supply `type: image` or an existing asset and never touch this package.
//
// Grounded on the teacher's VeoService (image-to-video via
// google.golang.org/genai, async-operation polling) and XAIVideoService
// (text/image-to-video via a plain REST submit-poll-download cycle),
// adapted from per-clip story assets to per-section/global pipeline
// backgrounds.
package videobg

import (
	"context"
	"fmt"
	"time"

	"github.com/bobarin/kobanashi/internal/models"
)

// Generator produces background video bytes (MP4) from a text prompt and an
// optional first-frame still image.
type Generator interface {
	GenerateVideo(ctx context.Context, prompt string, firstFrame []byte, firstFrameMimeType string) ([]byte, error)
}

// Resolve picks a Generator for the configured backend. "veo" uses Google's
// Veo model (text-to-video, optionally conditioned on a first frame); "xai" uses xAI Grok
// Imagine Video (prompt-only or image-conditioned, over REST).
func Resolve(backend, apiKey, model string) (Generator, error) {
	switch backend {
	case "veo", "":
		return NewVeoGenerator(apiKey, model), nil
	case "xai":
		return NewXAIGenerator(apiKey), nil
	default:
		return nil, models.NewConfigurationError("video.background_video_backend", "unknown background video backend: "+backend, nil)
	}
}

// GenerateForBackground realizes a BackgroundConfig whose Path is empty but
// whose Prompt is set, returning the bytes to write at the resolved asset
// path. The caller (the pipeline's realizeBackgroundAsset) is responsible for writing the
// file into remotion/public/ and rewriting Path to point at it.
func GenerateForBackground(ctx context.Context, gen Generator, bg *models.BackgroundConfig, firstFrame []byte, firstFrameMimeType string) ([]byte, error) {
	if bg.Type != models.BackgroundVideo {
		return nil, fmt.Errorf("videobg: GenerateForBackground called on a non-video background (type=%s)", bg.Type)
	}
	if bg.Prompt == "" {
		return nil, models.NewConfigurationError("background.prompt", "video background requires a prompt when path is absent", nil)
	}

	data, err := gen.GenerateVideo(ctx, bg.Prompt, firstFrame, firstFrameMimeType)
	if err != nil {
		return nil, fmt.Errorf("background video generation failed: %w", err)
	}
	return data, nil
}

// pollBackoff is shared by both backends' poll loops: multiply the current
// interval by factor, capped at max.
func pollBackoff(current time.Duration, factor float64, max time.Duration) time.Duration {
	next := time.Duration(float64(current) * factor)
	if next > max {
		return max
	}
	return next
}
