// Package slides implements the slide producer (section 4.6): per section,
// either download and letterbox a supplied source image or call an
// image-generation LLM, with retry-with-backoff and a bounded concurrent
// batch runner — grounded on the teacher's GeminiService for the LLM call
// shape and internal/worker's batched-concurrency idiom.
package slides

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bobarin/kobanashi/internal/models"
	"github.com/bobarin/kobanashi/internal/retry"
)

const (
	defaultMinWidth  = 800
	defaultMinHeight = 600
	targetWidth      = 1920
	targetHeight     = 1080
	interBatchDelay  = 1 * time.Second
	downloadTimeout  = 30 * time.Second
)

// Producer resolves one slide image per section, per spec section 4.6.
type Producer struct {
	llm           ImageClient
	httpClient    *http.Client
	retryCfg      retry.Config
	maxConcurrent int
	minWidth      int
	minHeight     int
}

// NewProducer builds a Producer from the resolved retry tuning (max
// retries, base delay) and slides.max_concurrent; apiKey authenticates the
// image-generation LLM and model selects it (empty falls back to the
// package default).
func NewProducer(maxRetries int, baseDelay time.Duration, apiKey, model string, maxConcurrent int) *Producer {
	return &Producer{
		llm:           newGeminiClient(apiKey, model),
		httpClient:    &http.Client{Timeout: downloadTimeout},
		retryCfg:      retry.Config{MaxRetries: maxRetries, BaseDelay: baseDelay, BackoffFactor: 2.0, MaxDelay: 30 * time.Second},
		maxConcurrent: maxConcurrent,
		minWidth:      defaultMinWidth,
		minHeight:     defaultMinHeight,
	}
}

// Job is one section's slide request, tagged with its section index (in
// OriginalIndex) so
// ProduceAll can report per-item failures without losing correspondence.
type Job struct {
	OriginalIndex  int
	SlidePrompt    string
	SourceImageURL string
	OutputPath     string
}

// ProduceAll runs jobs in batches of at most maxConcurrent, with a fixed
// inter-batch delay, and returns one error per job (nil on success) aligned
// by index — callers fold this into a StageFailure keyed by OriginalIndex.
func (p *Producer) ProduceAll(ctx context.Context, jobs []Job, styleInstructions string) []error {
	results := make([]error, len(jobs))

	for start := 0; start < len(jobs); start += p.maxConcurrent {
		end := start + p.maxConcurrent
		if end > len(jobs) {
			end = len(jobs)
		}
		batch := jobs[start:end]

		done := make(chan int, len(batch))
		for i, job := range batch {
			go func(i int, job Job) {
				results[start+i] = p.produceOne(ctx, job, styleInstructions)
				done <- i
			}(i, job)
		}
		for range batch {
			<-done
		}

		if end < len(jobs) {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(interBatchDelay):
			}
		}
	}
	return results
}

func (p *Producer) produceOne(ctx context.Context, job Job, styleInstructions string) error {
	if job.SourceImageURL != "" {
		img, err := p.tryDownload(ctx, job.SourceImageURL)
		if err == nil {
			return savePNG(job.OutputPath, fitToFrame(img, targetWidth, targetHeight))
		}
		log.Printf("[slides] download failed for section %d (%s): %v", job.OriginalIndex, job.SourceImageURL, err)
		if job.SlidePrompt == "" {
			log.Printf("[slides] no slide_prompt fallback for section %d, writing placeholder", job.OriginalIndex)
			return savePNG(job.OutputPath, placeholderImage(targetWidth, targetHeight))
		}
	}

	if job.SlidePrompt == "" {
		return models.NewSlideGenerationError(fmt.Sprint(job.OriginalIndex), "section has neither a usable source image nor a slide_prompt", nil)
	}

	img, err := p.tryGenerate(ctx, job.SlidePrompt, styleInstructions)
	if err != nil {
		return models.NewSlideGenerationError(fmt.Sprint(job.OriginalIndex), "image-LLM generation exhausted retries", err)
	}
	return savePNG(job.OutputPath, img)
}

func (p *Producer) tryDownload(ctx context.Context, url string) (image.Image, error) {
	var img image.Image
	err := retry.Do(ctx, p.retryCfg, retry.IsRetryableHTTPError, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := p.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return retry.WrapHTTPStatus(resp.StatusCode, fmt.Errorf("download returned status %d", resp.StatusCode))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		decoded, err := decodeImage(data)
		if err != nil {
			return err
		}
		if !meetsMinimumResolution(decoded, p.minWidth, p.minHeight) {
			return fmt.Errorf("image resolution below minimum %dx%d", p.minWidth, p.minHeight)
		}
		img = decoded
		return nil
	})
	return img, err
}

func (p *Producer) tryGenerate(ctx context.Context, prompt, styleInstructions string) (image.Image, error) {
	fullPrompt := styleInstructions + "\n\nSCENE:\n" + prompt

	var img image.Image
	err := retry.Do(ctx, p.retryCfg, retry.IsRetryableHTTPError, func() error {
		data, err := p.llm.GenerateImage(ctx, fullPrompt)
		if err != nil {
			return err
		}
		decoded, err := decodeImage(data)
		if err != nil {
			return err
		}
		img = fitToFrame(decoded, targetWidth, targetHeight)
		return nil
	})
	return img, err
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create slide directory: %w", err)
	}
	return os.Create(path)
}
