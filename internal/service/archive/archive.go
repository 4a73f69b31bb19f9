package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/lwouters/profile-assistant/backend/internal/model/chat"
)

// Turn is one settled user/assistant exchange as persisted on disk.
type Turn struct {
	RoomID     string       `json:"roomId"`
	User       chat.Message `json:"user"`
	Assistant  chat.Message `json:"assistant"`
	ArchivedAt time.Time    `json:"archivedAt"`
}

// Archive persists settled turns in a Pebble database. Keys carry a
// sortable timestamp prefix so iteration over a room prefix replays turns
// in archival order.
type Archive struct {
	db *pebble.DB

	// seq breaks key collisions when turns share a nanosecond timestamp.
	seq uint64
}

// Open opens (or creates) the archive database at the given path.
func Open(path string) (*Archive, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive at %s: %w", path, err)
	}
	log.Printf("[archive] opened at %s", path)
	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// SaveTurn appends one settled turn under the room's key prefix.
func (a *Archive) SaveTurn(_ context.Context, roomID string, user, assistant chat.Message) error {
	record := Turn{
		RoomID:     roomID,
		User:       user,
		Assistant:  assistant,
		ArchivedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	ts := record.ArchivedAt.UnixNano()
	seq := atomic.AddUint64(&a.seq, 1)
	key := fmt.Sprintf("room:%s:turn:%020d-%06d", roomID, ts, seq)

	if err := a.db.Set([]byte(key), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to persist turn: %w", err)
	}
	return nil
}

// ListTurns returns the room's archived turns in archival order.
func (a *Archive) ListTurns(_ context.Context, roomID string) ([]Turn, error) {
	prefix := []byte("room:" + roomID + ":turn:")

	iter, err := a.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []Turn
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var record Turn
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			return nil, fmt.Errorf("invalid archived turn at %s: %w", iter.Key(), err)
		}
		out = append(out, record)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return out, nil
}
