package profile

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	profileModel "github.com/lwouters/profile-assistant/backend/internal/model/profile"
	"github.com/lwouters/profile-assistant/backend/pkg/utils"
)

// Handler exposes the assistant profile backing the system context.
type Handler struct {
	profiles profileModel.Store
}

// New creates the profile handler.
func New(profiles profileModel.Store) *Handler {
	return &Handler{profiles: profiles}
}

// RegisterRoutes registers the profile routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/profile", h.handleGetProfile)
	r.Put("/profile/instructions", h.handleSetInstructions)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.profiles.FindByID("default")
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "profile not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

// handleSetInstructions caches the instructions the calling surface
// assembled from the profile's published settings.
func (h *Handler) handleSetInstructions(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Instructions string `json:"instructions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.profiles.SetInstructions("default", payload.Instructions) {
		utils.RespondError(w, http.StatusNotFound, "profile not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
