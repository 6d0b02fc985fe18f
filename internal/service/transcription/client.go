package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/vchat-labs/vchat/backend/internal/config"
	"github.com/vchat-labs/vchat/backend/internal/fault"
)

// Client calls the speech-recognition backend's OpenAI-compatible
// transcriptions endpoint.
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

// Transcribe submits the audio bytes with the configured language hint and
// returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if !c.cfg.Enabled() {
		return "", fault.New(fault.KindConfig, "speech recognition credential not configured")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.WriteField("model", c.cfg.ASRModel); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	if c.cfg.ASRLanguage != "" {
		if err := writer.WriteField("language", c.cfg.ASRLanguage); err != nil {
			return "", fmt.Errorf("failed to write language field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fault.ClassifyBackend(fmt.Errorf("transcription backend returned %d: %s", resp.StatusCode, string(body)))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Text, nil
}
