package turn

import "sync"

// Signal tells the presentation layer to re-anchor to the log tail.
type Signal struct {
	RoomID string `json:"roomId"`
	Event  string `json:"event"`
}

// Signal events.
const (
	EventSettled = "settled"
	EventCleared = "cleared"
)

// Signals is a room-keyed broadcast bus for transient re-anchor signals.
// Delivery is best-effort: a subscriber that cannot keep up misses signals
// instead of blocking reconciliation.
type Signals struct {
	mu   sync.Mutex
	subs map[string]map[chan Signal]struct{}
}

// NewSignals creates an empty signal bus.
func NewSignals() *Signals {
	return &Signals{subs: make(map[string]map[chan Signal]struct{})}
}

// Subscribe registers for a room's signals. The returned cancel func must
// be called to release the subscription.
func (s *Signals) Subscribe(roomID string) (<-chan Signal, func()) {
	ch := make(chan Signal, 8)

	s.mu.Lock()
	if s.subs[roomID] == nil {
		s.subs[roomID] = make(map[chan Signal]struct{})
	}
	s.subs[roomID][ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if set, ok := s.subs[roomID]; ok {
			if _, present := set[ch]; present {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(s.subs, roomID)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Publish fans a signal out to the room's subscribers.
func (s *Signals) Publish(roomID, event string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.subs[roomID] {
		select {
		case ch <- Signal{RoomID: roomID, Event: event}:
		default:
		}
	}
}
