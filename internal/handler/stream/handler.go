package stream

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/vchat-labs/vchat/backend/internal/model/chat"
	"github.com/vchat-labs/vchat/backend/pkg/utils"
)

// Converser runs one conversation turn.
type Converser interface {
	Converse(ctx context.Context, req chat.TurnRequest) (*chat.TurnResponse, error)
}

// Handler streams the stages of a conversation turn over Server-Sent Events,
// so clients can show progress while the backends run.
type Handler struct {
	conversations Converser
}

// New creates the stream handler.
func New(conversations Converser) *Handler {
	return &Handler{
		conversations: conversations,
	}
}

// StreamResponse is one SSE frame.
type StreamResponse struct {
	Event    string `json:"event"`
	Content  string `json:"content,omitempty"`
	Persona  string `json:"persona,omitempty"`
	Finished bool   `json:"finished,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HandleStreamRequest runs one turn and emits a frame per stage.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, req chat.TurnRequest) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	h.sendSSE(w, flusher, StreamResponse{
		Event:   "start",
		Persona: req.PersonaName,
	})

	resp, err := h.conversations.Converse(ctx, req)
	if err != nil {
		h.sendSSEError(w, flusher, err.Error())
		return err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:   "persona",
		Persona: resp.PersonaName,
	})

	if resp.Transcription != "" {
		h.sendSSE(w, flusher, StreamResponse{
			Event:   "transcription",
			Content: resp.Transcription,
		})
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:   "message",
		Persona: resp.PersonaName,
		Content: resp.ReplyText,
	})

	if resp.AudioDataURI != "" {
		h.sendSSE(w, flusher, StreamResponse{
			Event:   "audio",
			Content: resp.AudioDataURI,
		})
	} else if resp.AudioNotice != "" {
		h.sendSSE(w, flusher, StreamResponse{
			Event:   "notice",
			Content: resp.AudioNotice,
		})
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:    "end",
		Finished: true,
	})

	log.Printf("[stream] completed turn persona=%s mode=%s", resp.PersonaName, req.Mode)
	return nil
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}

func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, errorMsg string) {
	h.sendSSE(w, flusher, StreamResponse{
		Event: "error",
		Error: errorMsg,
	})
}
