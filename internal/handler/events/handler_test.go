package events

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lwouters/profile-assistant/backend/internal/service/turn"
)

func TestEventsDeliversRoomSignals(t *testing.T) {
	signals := turn.NewSignals()
	handler := New(signals)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	server := httptest.NewServer(r)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/rooms/r1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	defer conn.Close()

	// The subscription is established asynchronously after the upgrade, so
	// keep publishing until the first signal arrives.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				signals.Publish("r1", turn.EventSettled)
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var sig turn.Signal
	if err := conn.ReadJSON(&sig); err != nil {
		t.Fatalf("read err: %v", err)
	}
	if sig.RoomID != "r1" || sig.Event != turn.EventSettled {
		t.Fatalf("unexpected signal: %+v", sig)
	}
}
