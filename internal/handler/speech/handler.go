package speech

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vchat-labs/vchat/backend/internal/service/recording"
	"github.com/vchat-labs/vchat/backend/internal/service/synthesis"
	"github.com/vchat-labs/vchat/backend/internal/service/transcription"
	"github.com/vchat-labs/vchat/backend/pkg/utils"
)

// Transcriber resolves recorded audio to text, degrading internally.
type Transcriber interface {
	Transcribe(ctx context.Context, sessionID string, audio []byte) transcription.Result
}

// Synthesizer renders text to audio, degrading internally.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) synthesis.Result
}

// Handler exposes the recording state machine and the synthesis endpoint.
type Handler struct {
	recordings  *recording.Tracker
	transcriber Transcriber
	synthesizer Synthesizer
}

// New creates the speech handler.
func New(recordings *recording.Tracker, transcriber Transcriber, synthesizer Synthesizer) *Handler {
	return &Handler{
		recordings:  recordings,
		transcriber: transcriber,
		synthesizer: synthesizer,
	}
}

// RegisterRoutes mounts the speech routes. The websocket channel is only
// exposed when a conversation service is available.
func (h *Handler) RegisterRoutes(r chi.Router, conversations Converser) {
	r.Route("/speech", func(speechRouter chi.Router) {
		speechRouter.Post("/record", h.handleRecord)
		speechRouter.Post("/tts", h.handleSynthesize)

		if conversations != nil {
			NewWebSocketHandler(conversations).RegisterWebSocketRoutes(speechRouter)
		} else {
			speechRouter.Get("/ws/{sessionID}", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusNotImplemented, "speech websocket not available")
			})
		}
	})
}

type recordRequest struct {
	Action    string `json:"action"`
	SessionID string `json:"sessionId"`
	Audio     []byte `json:"audioData,omitempty"`
}

// handleRecord drives the per-session recording flag. Stopping always yields
// a transcription, falling back to a simulated phrase when no audio arrived.
func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	switch req.Action {
	case "start":
		h.recordings.Start(req.SessionID)
		log.Printf("[speech] recording started session=%s", req.SessionID)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"message":     "recording started",
			"isRecording": true,
		})

	case "stop":
		wasRecording := h.recordings.Stop(req.SessionID)
		result := h.transcriber.Transcribe(r.Context(), req.SessionID, req.Audio)
		log.Printf("[speech] recording stopped session=%s was_recording=%t simulated=%t", req.SessionID, wasRecording, result.Simulated)

		payload := map[string]interface{}{
			"success":       true,
			"wasRecording":  wasRecording,
			"transcription": result.Text,
			"isSimulation":  result.Simulated,
		}
		if result.Note != "" {
			payload["error"] = result.Note
		}
		utils.RespondJSON(w, http.StatusOK, payload)

	case "status":
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"isRecording": h.recordings.Status(req.SessionID),
		})

	default:
		utils.RespondError(w, http.StatusBadRequest, "action must be start, stop or status")
	}
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// handleSynthesize renders text to audio. Backend failures come back as a
// successful simulated notice, never an error status.
func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	result := h.synthesizer.Synthesize(r.Context(), req.Text, synthesis.NormalizeVoiceAlias(req.Voice))

	if result.Simulated {
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":      true,
			"message":      result.Notice,
			"isSimulation": true,
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"audio_url": result.AudioDataURI,
	})
}
