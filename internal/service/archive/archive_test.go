package archive_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lwouters/profile-assistant/backend/internal/model/chat"
	"github.com/lwouters/profile-assistant/backend/internal/service/archive"
)

func openArchive(t *testing.T) *archive.Archive {
	t.Helper()
	a, err := archive.Open(filepath.Join(t.TempDir(), "archive"))
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestSaveAndListTurns(t *testing.T) {
	a := openArchive(t)
	ctx := context.Background()

	for i, content := range []string{"first", "second", "third"} {
		err := a.SaveTurn(ctx, "r1",
			chat.Message{ID: content, RoomID: "r1", Author: "0xabc", Content: content},
			chat.Message{RoomID: "r1", Author: chat.AssistantAuthor, Content: "reply"},
		)
		if err != nil {
			t.Fatalf("SaveTurn %d err: %v", i, err)
		}
	}

	turns, err := a.ListTurns(ctx, "r1")
	if err != nil {
		t.Fatalf("ListTurns err: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	for i, want := range []string{"first", "second", "third"} {
		if turns[i].User.Content != want {
			t.Fatalf("turn %d out of order: got %q want %q", i, turns[i].User.Content, want)
		}
	}
}

func TestListTurnsScopedToRoom(t *testing.T) {
	a := openArchive(t)
	ctx := context.Background()

	if err := a.SaveTurn(ctx, "r1",
		chat.Message{RoomID: "r1", Author: "0xabc", Content: "hello"},
		chat.Message{RoomID: "r1", Author: chat.AssistantAuthor, Content: "hi"},
	); err != nil {
		t.Fatalf("SaveTurn err: %v", err)
	}

	turns, err := a.ListTurns(ctx, "r2")
	if err != nil {
		t.Fatalf("ListTurns err: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected no turns for r2, got %d", len(turns))
	}
}
