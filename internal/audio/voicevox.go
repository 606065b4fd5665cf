package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bobarin/kobanashi/internal/models"
)

// VoicevoxClient talks to a local VOICEVOX engine's REST API, following the
// teacher's CartesiaService shape: a bare *http.Client with a fixed
// timeout, JSON request bodies, and one exported call per operation.
type VoicevoxClient struct {
	baseURL string
	client  *http.Client
}

func NewVoicevoxClient(baseURL string) *VoicevoxClient {
	return &VoicevoxClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// RegisterWord pushes one pronunciation dictionary entry into the engine's
// user dictionary (section 4.4: "a single dictionary consumed by the
// VOICEVOX user dictionary API"). Once registered, plain narration text
// containing the surface form is read with the resolved pronunciation
// automatically — the synthesizer does not need to rewrite phrase text.
func (c *VoicevoxClient) RegisterWord(ctx context.Context, e models.PronunciationEntry) error {
	q := url.Values{}
	q.Set("surface", e.Surface)
	q.Set("pronunciation", e.Reading)
	q.Set("accent_type", strconv.Itoa(e.AccentType))
	q.Set("word_type", string(e.WordType))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user_dict_word?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build user_dict_word request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("user_dict_word request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("voicevox user_dict_word returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Synthesize runs VOICEVOX's two-step audio_query -> synthesis pipeline and
// returns raw WAV bytes.
func (c *VoicevoxClient) Synthesize(ctx context.Context, text string, speakerID int, speedScale float64) ([]byte, error) {
	query, err := c.audioQuery(ctx, text, speakerID)
	if err != nil {
		return nil, err
	}

	if speedScale > 0 {
		query["speedScale"] = speedScale
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audio query: %w", err)
	}

	synthURL := fmt.Sprintf("%s/synthesis?speaker=%d", c.baseURL, speakerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, synthURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("voicevox synthesis returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return io.ReadAll(resp.Body)
}

func (c *VoicevoxClient) audioQuery(ctx context.Context, text string, speakerID int) (map[string]interface{}, error) {
	q := url.Values{}
	q.Set("text", text)
	q.Set("speaker", strconv.Itoa(speakerID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio_query?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build audio_query request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio_query request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("voicevox audio_query returned status %d: %s", resp.StatusCode, string(body))
	}

	var query map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&query); err != nil {
		return nil, fmt.Errorf("failed to decode audio_query response: %w", err)
	}
	return query, nil
}

// Ping checks engine availability; initialize() uses this to fail fast with
// an actionable error rather than letting the first phrase fail.
func (c *VoicevoxClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/version", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("voicevox engine returned status %d", resp.StatusCode)
	}
	return nil
}
