package transcription

import (
	"context"
	"log"
	"math/rand/v2"
)

// placeholderPool feeds the no-audio flow so the UI stays exercisable before
// microphone capture is wired up.
var placeholderPool = []string{
	"Hello there!",
	"The weather is really nice today",
	"What are you up to right now?",
	"Tell me something fun",
	"Thank you!",
}

// apologyPool substitutes for a failed backend; a different pool so degraded
// turns read as apologies rather than invented input.
var apologyPool = []string{
	"Speech recognition is struggling, so this is a stand-in reply",
	"Could you say that one more time?",
	"The audio didn't come through clearly",
}

// Recognizer is the external speech-recognition backend.
type Recognizer interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Result is the tagged transcription outcome. Simulated results carry the
// underlying error in Note for diagnostics; they are still successes.
type Result struct {
	SessionID string `json:"sessionId,omitempty"`
	Text      string `json:"transcription"`
	Simulated bool   `json:"isSimulation"`
	Note      string `json:"error,omitempty"`
}

// Gateway converts captured audio to text, degrading to canned phrases when
// the backend is unavailable. Transcription failure is never fatal to the
// conversation.
type Gateway struct {
	recognizer Recognizer
	pick       func(n int) int
}

// NewGateway wraps the recognizer. A nil recognizer means no credential is
// configured and every call takes the simulated path.
func NewGateway(recognizer Recognizer) *Gateway {
	return &Gateway{recognizer: recognizer, pick: rand.IntN}
}

// Transcribe resolves audio to text. Absent audio selects a placeholder
// phrase uniformly at random; backend errors fall back to the apology pool.
func (g *Gateway) Transcribe(ctx context.Context, sessionID string, audio []byte) Result {
	if len(audio) == 0 {
		return Result{
			SessionID: sessionID,
			Text:      placeholderPool[g.pick(len(placeholderPool))],
			Simulated: true,
		}
	}

	if g.recognizer != nil {
		text, err := g.recognizer.Transcribe(ctx, audio)
		if err == nil {
			return Result{SessionID: sessionID, Text: text}
		}
		log.Printf("[transcription] backend error, falling back to simulation: %v", err)
		return Result{
			SessionID: sessionID,
			Text:      apologyPool[g.pick(len(apologyPool))],
			Simulated: true,
			Note:      err.Error(),
		}
	}

	return Result{
		SessionID: sessionID,
		Text:      apologyPool[g.pick(len(apologyPool))],
		Simulated: true,
		Note:      "speech recognition backend not configured",
	}
}
