package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lwouters/profile-assistant/backend/internal/service/turn"
	"github.com/lwouters/profile-assistant/backend/pkg/utils"
)

// Handler streams one turn over Server-Sent Events. Deltas grow the room's
// trailing partial message in place; the final frame carries the settled
// assistant message.
type Handler struct {
	orch *turn.Orchestrator
}

// New creates the streaming turn handler.
func New(orch *turn.Orchestrator) *Handler {
	return &Handler{orch: orch}
}

// StreamResponse is one SSE frame.
type StreamResponse struct {
	Event    string `json:"event"`
	RoomID   string `json:"roomId,omitempty"`
	Content  string `json:"content,omitempty"`
	Finished bool   `json:"finished,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HandleStreamRequest runs one streamed turn for the room.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, roomID, userMessage, author, contextPrompt string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	h.send(w, flusher, StreamResponse{Event: "start", RoomID: roomID})

	messages, err := h.orch.StreamTurn(ctx, roomID, userMessage, author, contextPrompt, func(delta string) {
		h.send(w, flusher, StreamResponse{Event: "delta", RoomID: roomID, Content: delta})
	})
	if errors.Is(err, turn.ErrTurnInFlight) {
		h.send(w, flusher, StreamResponse{Event: "error", RoomID: roomID, Error: "a turn is already in flight"})
		return err
	}
	if err != nil {
		h.send(w, flusher, StreamResponse{Event: "error", RoomID: roomID, Error: "streaming failed"})
		return err
	}

	// The settled tail is either the assistant message or the fixed error
	// entry; either way the client re-renders from it.
	if len(messages) > 0 {
		tail := messages[len(messages)-1]
		h.send(w, flusher, StreamResponse{Event: "message", RoomID: roomID, Content: tail.Content})
	}

	h.send(w, flusher, StreamResponse{Event: "end", RoomID: roomID, Finished: true})
	return nil
}

func (h *Handler) send(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}
