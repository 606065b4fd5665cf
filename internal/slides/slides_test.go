package slides

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bobarin/kobanashi/internal/retry"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestFitToFrameLetterboxesNarrowerImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1000, 1000)) // square source, wide target
	fitted := fitToFrame(src, targetWidth, targetHeight)
	b := fitted.Bounds()
	if b.Dx() != targetWidth || b.Dy() != targetHeight {
		t.Fatalf("expected canvas %dx%d, got %dx%d", targetWidth, targetHeight, b.Dx(), b.Dy())
	}
}

func TestMeetsMinimumResolutionRejectsTooSmall(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 400, 300))
	if meetsMinimumResolution(small, defaultMinWidth, defaultMinHeight) {
		t.Error("expected a 400x300 image to fail the 800x600 minimum")
	}
	big := image.NewRGBA(image.Rect(0, 0, 1200, 900))
	if !meetsMinimumResolution(big, defaultMinWidth, defaultMinHeight) {
		t.Error("expected a 1200x900 image to pass the 800x600 minimum")
	}
}

type stubImageClient struct {
	data []byte
	err  error
}

func (s *stubImageClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return s.data, s.err
}

func TestProduceOneDownloadsAndFitsSourceImage(t *testing.T) {
	pngBytes := solidPNG(t, 1200, 900, color.RGBA{R: 255, A: 255})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes)
	}))
	defer server.Close()

	dir := t.TempDir()
	outPath := filepath.Join(dir, "slide_0000.png")

	p := &Producer{
		llm:           &stubImageClient{},
		httpClient:    server.Client(),
		minWidth:      defaultMinWidth,
		minHeight:     defaultMinHeight,
		maxConcurrent: 1,
	}

	err := p.produceOne(context.Background(), Job{OriginalIndex: 0, SourceImageURL: server.URL, OutputPath: outPath}, "style")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(outPath); statErr != nil {
		t.Fatalf("expected output file to exist: %v", statErr)
	}
}

func TestProduceOneFallsThroughToLLMOnDownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	outPath := filepath.Join(dir, "slide_0001.png")

	generated := solidPNG(t, targetWidth, targetHeight, color.RGBA{G: 255, A: 255})
	p := &Producer{
		llm:           &stubImageClient{data: generated},
		httpClient:    server.Client(),
		retryCfg:      retry.Config{},
		minWidth:      defaultMinWidth,
		minHeight:     defaultMinHeight,
		maxConcurrent: 1,
	}

	err := p.produceOne(context.Background(), Job{
		OriginalIndex:  1,
		SourceImageURL: server.URL,
		SlidePrompt:    "a scene",
		OutputPath:     outPath,
	}, "style")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(outPath); statErr != nil {
		t.Fatalf("expected fallback-generated file to exist: %v", statErr)
	}
}

func TestProduceOneReturnsErrorWhenNeitherPathAvailable(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "slide_0002.png")

	p := &Producer{llm: &stubImageClient{}, httpClient: http.DefaultClient, maxConcurrent: 1}
	err := p.produceOne(context.Background(), Job{OriginalIndex: 2, OutputPath: outPath}, "style")
	if err == nil {
		t.Fatal("expected a SlideGenerationError when neither source image nor prompt is present")
	}
}

func TestProduceOneReturnsSlideGenerationErrorWhenLLMRetriesExhausted(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "slide_0003.png")

	p := &Producer{
		llm:           &stubImageClient{err: errors.New("image service unavailable")},
		httpClient:    http.DefaultClient,
		retryCfg:      retry.Config{MaxRetries: 1, BaseDelay: time.Millisecond, BackoffFactor: 1, MaxDelay: time.Millisecond},
		maxConcurrent: 1,
	}

	err := p.produceOne(context.Background(), Job{OriginalIndex: 3, SlidePrompt: "a scene", OutputPath: outPath}, "style")
	if err == nil {
		t.Fatal("expected exhausted image-LLM retries to fail the slide")
	}
	if _, statErr := os.Stat(outPath); statErr == nil {
		t.Error("expected no placeholder file to be written on retry exhaustion")
	}
}

func TestProduceAllRespectsMaxConcurrentBatching(t *testing.T) {
	dir := t.TempDir()
	generated := solidPNG(t, targetWidth, targetHeight, color.RGBA{B: 255, A: 255})
	p := &Producer{
		llm:           &stubImageClient{data: generated},
		httpClient:    http.DefaultClient,
		retryCfg:      retry.Config{},
		maxConcurrent: 2,
	}

	jobs := make([]Job, 5)
	for i := range jobs {
		jobs[i] = Job{OriginalIndex: i, SlidePrompt: "scene", OutputPath: filepath.Join(dir, "slide.png")}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	results := p.ProduceAll(ctx, jobs, "style")
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	for i, err := range results {
		if err != nil {
			t.Errorf("job %d: unexpected error: %v", i, err)
		}
	}
}
