package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"mindcast/pkg/platform/sentinel"
)

const (
	ttsMaxRetries   = 3
	ttsInitialDelay = 1 * time.Second
)

// TTSClient renders narration text to MP3 audio.
type TTSClient interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// OpenAITTS calls the audio speech endpoint.
type OpenAITTS struct {
	apiKey  string
	baseURL string
	model   string
	voice   string
	client  *http.Client
}

// NewOpenAITTS constructs a TTS client against the given base URL.
func NewOpenAITTS(apiKey, baseURL, model, voice string) *OpenAITTS {
	return &OpenAITTS{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		voice:   voice,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize returns the spoken narration as MP3 bytes. Rate limits and
// server errors retry with exponential backoff.
func (c *OpenAITTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set: %w", sentinel.ErrUnavailable)
	}

	body, err := json.Marshal(speechRequest{
		Model:          c.model,
		Voice:          c.voice,
		Input:          text,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < ttsMaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * ttsInitialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("speech request failed: %w", err)
			continue
		}

		audio, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response body: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("tts error (%d): %s", resp.StatusCode, truncate(audio, 300))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return nil, lastErr
		}
		if len(audio) == 0 {
			return nil, fmt.Errorf("empty audio response")
		}
		return audio, nil
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", ttsMaxRetries, lastErr)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
