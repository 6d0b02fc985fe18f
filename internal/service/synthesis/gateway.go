package synthesis

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
)

// Synthesizer is the external speech-synthesis backend.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Result is the tagged synthesis outcome. Exactly one of AudioDataURI or
// Notice is populated; callers must check for the audio payload to detect the
// degraded path.
type Result struct {
	AudioDataURI string `json:"audio_url,omitempty"`
	Notice       string `json:"message,omitempty"`
	Simulated    bool   `json:"isSimulation,omitempty"`
	Note         string `json:"error,omitempty"`
}

// Gateway converts assistant text to audio, degrading to a human-readable
// notice when the backend is unavailable. Synthesis failure never aborts the
// turn.
type Gateway struct {
	synthesizer Synthesizer
}

// NewGateway wraps the synthesizer. A nil synthesizer means no credential is
// configured and every call takes the simulated path.
func NewGateway(synthesizer Synthesizer) *Gateway {
	return &Gateway{synthesizer: synthesizer}
}

// Synthesize turns trimmed text into an inline audio data URI, so the caller
// needs no separate fetch for playback.
func (g *Gateway) Synthesize(ctx context.Context, text, voice string) Result {
	text = strings.TrimSpace(text)

	if g.synthesizer == nil {
		return simulated(text, "speech synthesis backend not configured")
	}

	audio, err := g.synthesizer.Synthesize(ctx, text, voice)
	if err != nil {
		log.Printf("[synthesis] backend error, falling back to simulation: %v", err)
		return simulated(text, err.Error())
	}

	return Result{
		AudioDataURI: "data:audio/mp3;base64," + base64.StdEncoding.EncodeToString(audio),
	}
}

// NormalizeVoiceAlias maps persona voice tokens onto voices the synthesis
// backend accepts. Unknown tokens resolve to empty, which selects the
// configured default voice.
func NormalizeVoiceAlias(voiceID string) string {
	switch voiceID {
	case "alloy", "echo", "fable", "onyx", "nova", "shimmer":
		return voiceID
	default:
		return ""
	}
}

func simulated(text, note string) Result {
	return Result{
		Notice:    fmt.Sprintf("speech synthesis for %q completed (simulated)", excerpt(text, 50)),
		Simulated: true,
		Note:      note,
	}
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
