package room

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lwouters/profile-assistant/backend/internal/model/chat"
)

// Store owns the per-room ordered message logs. All mutations run under a
// single lock, so no room log can be observed in a torn state.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*sequence
}

// NewStore bootstraps an empty in-memory message store.
func NewStore() *Store {
	return &Store{rooms: make(map[string]*sequence)}
}

func (s *Store) room(roomID string) *sequence {
	seq, ok := s.rooms[roomID]
	if !ok {
		seq = &sequence{entries: make([]chat.Message, 0, 16)}
		s.rooms[roomID] = seq
	}
	return seq
}

// SetAll replaces the room's log wholesale.
func (s *Store) SetAll(_ context.Context, roomID string, messages []chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.room(roomID)
	seq.entries = append(seq.entries[:0], messages...)
}

// Append inserts a message while keeping the ordering invariants:
// a trailing streamed partial is replaced outright, a pending loading
// placeholder stays last, everything else lands at the tail.
func (s *Store) Append(_ context.Context, roomID string, message chat.Message) chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	message = s.stamp(roomID, message)
	seq := s.room(roomID)

	if tail, ok := seq.tail(); ok && tail.Kind == chat.KindPartial {
		seq.replaceTail(message)
		return message
	}

	if message.Kind == chat.KindLoading && seq.contains(chat.KindLoading) {
		// A pending placeholder already marks the room; a second one would
		// corrupt the log. Detected here instead of trusting every caller.
		log.Printf("[room] duplicate loading placeholder ignored for room=%s", roomID)
		return message
	}

	seq.insertBeforeFirstMatching(message, func(m chat.Message) bool {
		return m.Kind == chat.KindLoading
	})
	return message
}

// AppendDelta grows the trailing streamed partial in place, or starts a new
// one seeded with the delta when no partial is pending.
func (s *Store) AppendDelta(_ context.Context, roomID string, delta chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.room(roomID)
	if tail, ok := seq.tail(); ok && tail.Kind == chat.KindPartial {
		tail.Content += delta.Content
		seq.replaceTail(tail)
		return
	}

	delta = s.stamp(roomID, delta)
	delta.Kind = chat.KindPartial
	seq.appendTail(delta)
}

// RemoveLoading drops any loading placeholder from the room's log. Calling
// it on a room without a placeholder is a no-op.
func (s *Store) RemoveLoading(_ context.Context, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.room(roomID).filter(func(m chat.Message) bool {
		return m.Kind != chat.KindLoading
	})
}

// Clear empties the room's log.
func (s *Store) Clear(_ context.Context, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.room(roomID)
	seq.entries = seq.entries[:0]
}

// Get returns a copy of the room's current ordered log.
func (s *Store) Get(_ context.Context, roomID string) []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	return seq.snapshot()
}

// stamp fills the fields every stored message must carry. IDs are assigned
// here so they are unique for the lifetime of the room.
func (s *Store) stamp(roomID string, message chat.Message) chat.Message {
	message.RoomID = roomID
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Kind == "" {
		message.Kind = chat.KindNormal
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	return message
}
