package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lwouters/profile-assistant/backend/internal/model/profile"
	"github.com/lwouters/profile-assistant/backend/internal/service/room"
	"github.com/lwouters/profile-assistant/backend/internal/service/turn"
	"github.com/lwouters/profile-assistant/backend/pkg/utils"
)

// Handler exposes the room log and turn submission over HTTP.
type Handler struct {
	orch     *turn.Orchestrator
	store    *room.Store
	profiles profile.Store
}

// New creates the chat handler.
func New(orch *turn.Orchestrator, store *room.Store, profiles profile.Store) *Handler {
	return &Handler{orch: orch, store: store, profiles: profiles}
}

// RegisterRoutes registers the room routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/rooms/{roomID}/messages", func(r chi.Router) {
		r.Get("/", h.handleGetMessages)
		r.Post("/", h.handleSubmitTurn)
		r.Delete("/", h.handleClear)
	})
}

func (h *Handler) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"messages": h.store.Get(r.Context(), roomID),
	})
}

func (h *Handler) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	var payload struct {
		Content string `json:"content"`
		Author  string `json:"author"`
		Context string `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	messages, err := h.orch.SubmitTurn(r.Context(), roomID, payload.Content, payload.Author, h.contextPrompt(payload.Context))
	if errors.Is(err, turn.ErrTurnInFlight) {
		utils.RespondError(w, http.StatusConflict, "a turn is already in flight for this room")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to process turn")
		return
	}

	utils.RespondJSON(w, http.StatusAccepted, map[string]interface{}{
		"messages": messages,
	})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	h.orch.Clear(r.Context(), roomID)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// contextPrompt resolves the system context for a turn. The request value
// wins; otherwise the cached profile instructions apply.
func (h *Handler) contextPrompt(requestContext string) string {
	if strings.TrimSpace(requestContext) != "" {
		return requestContext
	}
	if p, ok := h.profiles.FindByID("default"); ok {
		return p.Instructions
	}
	return ""
}
