package generate

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/lwouters/profile-assistant/backend/internal/service/ai"
	"github.com/lwouters/profile-assistant/backend/pkg/utils"
)

// Handler is the raw submission boundary: the widget posts a role-tagged
// message list and receives the normalized generation result. No room
// state is touched here.
type Handler struct {
	client *ai.Client
}

// New creates the generation passthrough handler.
func New(client *ai.Client) *Handler {
	return &Handler{client: client}
}

// RegisterRoutes registers the submission route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/messages", h.handleGenerate)
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Messages []wireMessage `json:"messages"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Messages == nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid messages format")
		return
	}

	history := make([]*schema.Message, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		switch m.Role {
		case "system":
			history = append(history, schema.SystemMessage(m.Content))
		case "assistant":
			history = append(history, schema.AssistantMessage(m.Content, nil))
		case "user":
			history = append(history, schema.UserMessage(m.Content))
		default:
			utils.RespondError(w, http.StatusBadRequest, "invalid message role")
			return
		}
	}

	result, err := h.client.Generate(r.Context(), history)
	if err != nil {
		// Backend detail stays in the logs.
		log.Printf("[generate] request failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to generate response")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"content":      result.Text,
		"finishReason": result.FinishReason,
		"usage":        result.Usage,
	})
}
