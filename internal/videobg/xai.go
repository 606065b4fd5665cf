package videobg

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	xaiBaseURL           = "https://api.x.ai/v1"
	xaiVideoModel        = "grok-imagine-video"
	xaiInitialDelay      = 15 * time.Second
	xaiPollMinInterval   = 5 * time.Second
	xaiPollMaxInterval   = 20 * time.Second
	xaiPollBackoffFactor = 1.5
	xaiMaxPollDuration   = 5 * time.Minute
	xaiDefaultDuration   = 8
	xaiDefaultAspect     = "16:9"
	xaiDefaultResolution = "720p"
)

// XAIGenerator generates a background video via xAI's Grok Imagine Video
// REST API: submit a generation request, poll by request_id, download.
type XAIGenerator struct {
	apiKey     string
	httpClient *http.Client
}

func NewXAIGenerator(apiKey string) *XAIGenerator {
	return &XAIGenerator{apiKey: apiKey, httpClient: &http.Client{Timeout: 30 * time.Second}}
}

type xaiGenerationRequest struct {
	Prompt      string         `json:"prompt"`
	Model       string         `json:"model"`
	Image       *xaiImageInput `json:"image,omitempty"`
	Duration    int            `json:"duration,omitempty"`
	AspectRatio string         `json:"aspect_ratio,omitempty"`
	Resolution  string         `json:"resolution,omitempty"`
}

type xaiImageInput struct {
	URL string `json:"url,omitempty"`
	B64 string `json:"b64_json,omitempty"`
}

type xaiGenerationResponse struct {
	RequestID string `json:"request_id"`
}

// xaiVideoResult unifies the three shapes xAI's GET endpoint returns:
// pending ({"status":"pending"}), failed ({"status":"failed","error":"..."}),
// and completed (no status field, "video" object present).
type xaiVideoResult struct {
	Status string          `json:"status"`
	Video  *xaiVideoOutput `json:"video,omitempty"`
	Error  string          `json:"error"`
}

type xaiVideoOutput struct {
	URL      string `json:"url"`
	Duration int    `json:"duration"`
}

// GenerateVideo submits a prompt (optionally conditioned on firstFrame,
// sent inline as base64 since background-generation first frames are
// locally rendered slides rather than publicly hosted URLs) and polls
// until the resulting video is ready.
func (s *XAIGenerator) GenerateVideo(ctx context.Context, prompt string, firstFrame []byte, firstFrameMimeType string) ([]byte, error) {
	reqBody := xaiGenerationRequest{
		Prompt:      prompt + "\n\nGenerate a slow, ambient, seamlessly loopable background video. Silent video only.",
		Model:       xaiVideoModel,
		Duration:    xaiDefaultDuration,
		AspectRatio: xaiDefaultAspect,
		Resolution:  xaiDefaultResolution,
	}
	if len(firstFrame) > 0 {
		reqBody.Image = &xaiImageInput{B64: base64.StdEncoding.EncodeToString(firstFrame)}
	}

	log.Printf("[videobg/xai] starting background video generation (promptLen=%d, hasFirstFrame=%v)", len(prompt), len(firstFrame) > 0)

	requestID, err := s.submitGeneration(ctx, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to submit background video generation: %w", err)
	}

	result, err := s.pollForResult(ctx, requestID)
	if err != nil {
		return nil, err
	}

	videoBytes, err := s.downloadVideo(ctx, result.Video.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download generated video: %w", err)
	}
	if len(videoBytes) == 0 {
		return nil, fmt.Errorf("downloaded video is empty")
	}

	log.Printf("[videobg/xai] background video downloaded (%d bytes)", len(videoBytes))
	return videoBytes, nil
}

func (s *XAIGenerator) submitGeneration(ctx context.Context, reqBody xaiGenerationRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, xaiBaseURL+"/videos/generations", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("xAI returned status %d: %s", resp.StatusCode, string(body))
	}

	var genResp xaiGenerationResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse generation response: %w", err)
	}
	if genResp.RequestID == "" {
		return "", fmt.Errorf("no request_id in generation response")
	}
	return genResp.RequestID, nil
}

// pollForResult polls with an initial delay then exponential backoff
// (5s -> x1.5 -> cap 20s), bounded by a 5 minute hard timeout.
func (s *XAIGenerator) pollForResult(ctx context.Context, requestID string) (*xaiVideoResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(xaiInitialDelay):
	}

	deadline := time.Now().Add(xaiMaxPollDuration)
	interval := xaiPollMinInterval

	for {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("background video generation timed out after %v", xaiMaxPollDuration)
		}

		result, err := s.fetchStatus(ctx, requestID)
		if err != nil {
			return nil, err
		}

		switch result.Status {
		case "failed":
			return nil, fmt.Errorf("background video generation failed: %s", result.Error)
		case "pending", "":
			if result.Video != nil {
				return result, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
		interval = pollBackoff(interval, xaiPollBackoffFactor, xaiPollMaxInterval)
	}
}

func (s *XAIGenerator) fetchStatus(ctx context.Context, requestID string) (*xaiVideoResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, xaiBaseURL+"/videos/"+requestID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create poll request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read poll response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("xAI poll returned status %d: %s", resp.StatusCode, string(body))
	}

	var result xaiVideoResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse poll response: %w", err)
	}
	return &result, nil
}

func (s *XAIGenerator) downloadVideo(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("video download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
