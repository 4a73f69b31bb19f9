package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	chatHandler "github.com/lwouters/profile-assistant/backend/internal/handler/chat"
	"github.com/lwouters/profile-assistant/backend/internal/handler/events"
	"github.com/lwouters/profile-assistant/backend/internal/handler/generate"
	profileHandler "github.com/lwouters/profile-assistant/backend/internal/handler/profile"
	streamHandler "github.com/lwouters/profile-assistant/backend/internal/handler/stream"
	middlewarePkg "github.com/lwouters/profile-assistant/backend/internal/middleware"
	profileModel "github.com/lwouters/profile-assistant/backend/internal/model/profile"
	"github.com/lwouters/profile-assistant/backend/internal/service/ai"
	"github.com/lwouters/profile-assistant/backend/internal/service/room"
	"github.com/lwouters/profile-assistant/backend/internal/service/turn"
	"github.com/lwouters/profile-assistant/backend/pkg/utils"
)

// Options carries the optional pieces of the router.
type Options struct {
	RateLimiter *middlewarePkg.RateLimiter
}

// NewRouter wires HTTP routes to core services. aiClient may be nil when
// the generation backend is not configured; the affected routes then
// report service unavailable.
func NewRouter(profiles profileModel.Store, store *room.Store, orch *turn.Orchestrator, aiClient *ai.Client, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Handler)
	}

	r.Route("/api", func(api chi.Router) {
		profileHandler.New(profiles).RegisterRoutes(api)
		chatHandler.New(orch, store, profiles).RegisterRoutes(api)
		events.New(orch.Signals()).RegisterRoutes(api)

		if aiClient != nil {
			generate.New(aiClient).RegisterRoutes(api)
		} else {
			api.Post("/messages", func(w http.ResponseWriter, r *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "generation backend unavailable")
			})
		}

		sh := streamHandler.New(orch)
		api.Get("/stream/{roomID}", func(w http.ResponseWriter, r *http.Request) {
			if aiClient == nil {
				utils.RespondError(w, http.StatusServiceUnavailable, "generation backend unavailable")
				return
			}

			roomID := chi.URLParam(r, "roomID")
			userMessage := r.URL.Query().Get("message")
			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			author := r.URL.Query().Get("author")
			contextPrompt := r.URL.Query().Get("context")
			if err := sh.HandleStreamRequest(r.Context(), w, roomID, userMessage, author, contextPrompt); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
