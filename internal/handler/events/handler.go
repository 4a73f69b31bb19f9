package events

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lwouters/profile-assistant/backend/internal/service/turn"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The widget is served from another origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler pushes room re-anchor signals to the widget over a websocket, so
// the presentation layer can scroll to the log tail as turns settle.
type Handler struct {
	signals *turn.Signals
}

// New creates the events handler.
func New(signals *turn.Signals) *Handler {
	return &Handler{signals: signals}
}

// RegisterRoutes registers the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/rooms/{roomID}/events", h.handleEvents)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[events] upgrade failed for room=%s: %v", roomID, err)
		return
	}
	defer conn.Close()

	signals, cancel := h.signals.Subscribe(roomID)
	defer cancel()

	// Drain client frames so closes are noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Printf("[events] subscribed room=%s", roomID)
	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			if err := conn.WriteJSON(sig); err != nil {
				log.Printf("[events] write failed for room=%s: %v", roomID, err)
				return
			}
		}
	}
}
