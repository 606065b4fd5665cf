package videobg

import (
	"context"
	"testing"
	"time"

	"github.com/bobarin/kobanashi/internal/models"
)

type fakeGenerator struct {
	data []byte
	err  error
}

func (f *fakeGenerator) GenerateVideo(ctx context.Context, prompt string, firstFrame []byte, mimeType string) ([]byte, error) {
	return f.data, f.err
}

func TestResolvePicksVeoByDefault(t *testing.T) {
	gen, err := Resolve("", "key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gen.(*VeoGenerator); !ok {
		t.Errorf("expected empty backend to default to VeoGenerator, got %T", gen)
	}
}

func TestResolvePicksXAI(t *testing.T) {
	gen, err := Resolve("xai", "key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gen.(*XAIGenerator); !ok {
		t.Errorf("expected xai backend, got %T", gen)
	}
}

func TestResolveRejectsUnknownBackend(t *testing.T) {
	if _, err := Resolve("sora", "key", ""); err == nil {
		t.Fatal("expected an error for an unrecognized backend")
	}
}

func TestGenerateForBackgroundRejectsNonVideoType(t *testing.T) {
	bg := &models.BackgroundConfig{Type: models.BackgroundImage, Path: "bg.png"}
	_, err := GenerateForBackground(context.Background(), &fakeGenerator{}, bg, nil, "")
	if err == nil {
		t.Fatal("expected an error when called on an image background")
	}
}

func TestGenerateForBackgroundRejectsMissingPrompt(t *testing.T) {
	bg := &models.BackgroundConfig{Type: models.BackgroundVideo}
	_, err := GenerateForBackground(context.Background(), &fakeGenerator{}, bg, nil, "")
	if err == nil {
		t.Fatal("expected an error when a video background has no prompt and no path")
	}
}

func TestGenerateForBackgroundReturnsGeneratorBytes(t *testing.T) {
	bg := &models.BackgroundConfig{Type: models.BackgroundVideo, Prompt: "a quiet forest at dusk"}
	data, err := GenerateForBackground(context.Background(), &fakeGenerator{data: []byte("mp4-bytes")}, bg, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "mp4-bytes" {
		t.Errorf("expected generator bytes to pass through, got %q", data)
	}
}

func TestPollBackoffCapsAtMax(t *testing.T) {
	interval := 5 * time.Second
	for i := 0; i < 10; i++ {
		interval = pollBackoff(interval, 1.5, 20*time.Second)
	}
	if interval != 20*time.Second {
		t.Errorf("expected backoff to cap at 20s, got %v", interval)
	}
}
