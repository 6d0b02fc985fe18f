package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vchat-labs/vchat/backend/internal/config"
	"github.com/vchat-labs/vchat/backend/internal/fault"
)

// Client calls the speech-synthesis backend's OpenAI-compatible speech
// endpoint and returns raw MP3 bytes.
type Client struct {
	cfg        config.SpeechConfig
	httpClient *http.Client
}

// NewClient builds the backend client from the loaded speech config.
func NewClient(cfg config.SpeechConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format,omitempty"`
	Speed          float64 `json:"speed,omitempty"`
}

// Synthesize submits text with the configured voice and speed.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if !c.cfg.Enabled() {
		return nil, fault.New(fault.KindConfig, "speech synthesis credential not configured")
	}

	if voice == "" {
		voice = c.cfg.TTSVoice
	}

	payload, err := json.Marshal(speechRequest{
		Model:          c.cfg.TTSModel,
		Input:          text,
		Voice:          voice,
		ResponseFormat: "mp3",
		Speed:          c.cfg.TTSSpeed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fault.ClassifyBackend(fmt.Errorf("synthesis backend returned %d: %s", resp.StatusCode, string(body)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}

	return audio, nil
}
