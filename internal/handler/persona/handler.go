package persona

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vchat-labs/vchat/backend/internal/fault"
	"github.com/vchat-labs/vchat/backend/internal/model/persona"
	"github.com/vchat-labs/vchat/backend/pkg/utils"
)

// Handler exposes the persona catalog over HTTP.
type Handler struct {
	personas persona.Store
}

// New creates the persona handler.
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes mounts the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Post("/personas/select", h.handleSelectPersona)
	r.Post("/personas/create", h.handleCreatePersona)
}

// handleListPersonas lists the catalog. Listing adopts the first persona as
// current when none has been selected yet, so a fresh client always sees a
// usable default.
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	names := h.personas.List()

	current, ok := h.personas.Current()
	if !ok && len(names) > 0 {
		if err := h.personas.Select(names[0]); err == nil {
			current, _ = h.personas.Current()
		}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"personas":        names,
		"current_persona": current.Name,
	})
}

// handleSelectPersona switches the active persona.
func (h *Handler) handleSelectPersona(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaName string `json:"persona_name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload.PersonaName = strings.TrimSpace(payload.PersonaName)
	if payload.PersonaName == "" {
		utils.RespondError(w, http.StatusBadRequest, "persona_name is required")
		return
	}

	if err := h.personas.Select(payload.PersonaName); err != nil {
		utils.RespondError(w, fault.HTTPStatus(fault.KindOf(err)), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "switched to persona " + payload.PersonaName,
	})
}

// handleCreatePersona registers a new persona, filling defaults for the
// fields the caller omits.
func (h *Handler) handleCreatePersona(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name    string `json:"name"`
		URL     string `json:"url"`
		VoiceID string `json:"voiceId"`
		ModelID string `json:"modelId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(payload.Name)
	url := strings.TrimSpace(payload.URL)

	created, err := h.personas.Create(name, url, payload.VoiceID, payload.ModelID)
	if err != nil {
		utils.RespondError(w, fault.HTTPStatus(fault.KindOf(err)), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "persona " + created.Name + " created",
	})
}
