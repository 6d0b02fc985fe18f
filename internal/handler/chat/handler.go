package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vchat-labs/vchat/backend/internal/fault"
	"github.com/vchat-labs/vchat/backend/internal/model/chat"
	"github.com/vchat-labs/vchat/backend/pkg/utils"
)

// Converser runs one conversation turn. Abstracted for tests.
type Converser interface {
	Converse(ctx context.Context, req chat.TurnRequest) (*chat.TurnResponse, error)
}

// Handler exposes the conversation endpoint.
type Handler struct {
	conversations Converser
}

// New creates the chat handler.
func New(conversations Converser) *Handler {
	return &Handler{
		conversations: conversations,
	}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

// handleChat runs one turn in the requested mode.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Mode == "" {
		req.Mode = chat.ModeTextToText
	}

	resp, err := h.conversations.Converse(r.Context(), req)
	if err != nil {
		log.Printf("[chat] turn failed mode=%s persona=%s: %v", req.Mode, req.PersonaName, err)
		utils.RespondError(w, fault.HTTPStatus(fault.KindOf(err)), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":                true,
		"turnId":                 resp.TurnID,
		"persona":                resp.PersonaName,
		"response":               resp.ReplyText,
		"transcription":          resp.Transcription,
		"transcriptionSimulated": resp.TranscriptionSimulated,
		"audio_url":              resp.AudioDataURI,
		"audio_notice":           resp.AudioNotice,
		"audioSimulated":         resp.AudioSimulated,
	})
}
