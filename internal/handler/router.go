package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/vchat-labs/vchat/backend/internal/handler/chat"
	personaHandler "github.com/vchat-labs/vchat/backend/internal/handler/persona"
	speechHandler "github.com/vchat-labs/vchat/backend/internal/handler/speech"
	"github.com/vchat-labs/vchat/backend/internal/handler/stream"
	middlewarePkg "github.com/vchat-labs/vchat/backend/internal/middleware"
	"github.com/vchat-labs/vchat/backend/internal/model/chat"
	personaModel "github.com/vchat-labs/vchat/backend/internal/model/persona"
	"github.com/vchat-labs/vchat/backend/internal/observability"
	"github.com/vchat-labs/vchat/backend/internal/service/conversation"
	"github.com/vchat-labs/vchat/backend/internal/service/recording"
	"github.com/vchat-labs/vchat/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, conversations *conversation.Service, recordings *recording.Tracker, transcriber speechHandler.Transcriber, synthesizer speechHandler.Synthesizer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	streamHandler := stream.New(conversations)

	r.Route("/api", func(api chi.Router) {
		personaHandler.New(personas).RegisterRoutes(api)
		chatHandler.New(conversations).RegisterRoutes(api)

		speech := speechHandler.New(recordings, transcriber, synthesizer)
		speech.RegisterRoutes(api, conversations)

		api.Get("/stream", func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()
			userMessage := query.Get("message")
			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			mode := chat.Mode(query.Get("mode"))
			if mode == "" {
				mode = chat.ModeTextToText
			}

			req := chat.TurnRequest{
				Message:     userMessage,
				Mode:        mode,
				PersonaName: query.Get("persona"),
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, req); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"status":  "healthy",
			})
		})
	})

	r.Method(http.MethodGet, "/metrics", observability.MetricsHandler())

	return r
}
