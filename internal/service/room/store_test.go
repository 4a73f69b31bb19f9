package room_test

import (
	"context"
	"testing"

	"github.com/lwouters/profile-assistant/backend/internal/model/chat"
	"github.com/lwouters/profile-assistant/backend/internal/service/room"
)

func TestAppendKeepsLoadingPlaceholderLast(t *testing.T) {
	store := room.NewStore()
	ctx := context.Background()

	store.Append(ctx, "r1", chat.Message{Author: "0xabc", Content: "hello"})
	store.Append(ctx, "r1", chat.Message{Author: chat.AssistantAuthor, Kind: chat.KindLoading})
	inserted := store.Append(ctx, "r1", chat.Message{Author: chat.AssistantAuthor, Content: "hi there"})

	got := store.Get(ctx, "r1")
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	if got[1].ID != inserted.ID {
		t.Fatalf("expected new message before placeholder, got kind %q", got[1].Kind)
	}
	if got[2].Kind != chat.KindLoading {
		t.Fatalf("expected loading placeholder last, got kind %q", got[2].Kind)
	}
}

func TestAppendReplacesTrailingPartial(t *testing.T) {
	store := room.NewStore()
	ctx := context.Background()

	store.AppendDelta(ctx, "r1", chat.Message{Author: chat.AssistantAuthor, Content: "par"})
	store.Append(ctx, "r1", chat.Message{Author: chat.AssistantAuthor, Content: "final answer"})

	got := store.Get(ctx, "r1")
	if len(got) != 1 {
		t.Fatalf("expected partial to be replaced, got %d messages", len(got))
	}
	if got[0].Content != "final answer" || got[0].Kind != chat.KindNormal {
		t.Fatalf("unexpected tail after finalize: %+v", got[0])
	}
}

func TestAppendDeltaConcatenatesContent(t *testing.T) {
	store := room.NewStore()
	ctx := context.Background()

	for _, chunk := range []string{"a", "b", "c"} {
		store.AppendDelta(ctx, "r1", chat.Message{Author: chat.AssistantAuthor, Content: chunk})
	}

	got := store.Get(ctx, "r1")
	if len(got) != 1 {
		t.Fatalf("expected a single partial message, got %d", len(got))
	}
	if got[0].Content != "abc" {
		t.Fatalf("expected concatenated content abc, got %q", got[0].Content)
	}
	if got[0].Kind != chat.KindPartial {
		t.Fatalf("expected partial kind, got %q", got[0].Kind)
	}
}

func TestAppendIgnoresSecondLoadingPlaceholder(t *testing.T) {
	store := room.NewStore()
	ctx := context.Background()

	store.Append(ctx, "r1", chat.Message{Kind: chat.KindLoading})
	store.Append(ctx, "r1", chat.Message{Kind: chat.KindLoading})

	count := 0
	for _, m := range store.Get(ctx, "r1") {
		if m.Kind == chat.KindLoading {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one loading placeholder, got %d", count)
	}
}

func TestRemoveLoadingIsIdempotent(t *testing.T) {
	store := room.NewStore()
	ctx := context.Background()

	store.Append(ctx, "r1", chat.Message{Author: "0xabc", Content: "hello"})
	store.Append(ctx, "r1", chat.Message{Kind: chat.KindLoading})

	store.RemoveLoading(ctx, "r1")
	store.RemoveLoading(ctx, "r1")

	for _, m := range store.Get(ctx, "r1") {
		if m.Kind == chat.KindLoading {
			t.Fatal("loading placeholder survived removal")
		}
	}
}

func TestClearIsIdempotent(t *testing.T) {
	store := room.NewStore()
	ctx := context.Background()

	store.Append(ctx, "r1", chat.Message{Author: "0xabc", Content: "hello"})
	store.Clear(ctx, "r1")
	store.Clear(ctx, "r1")

	if got := store.Get(ctx, "r1"); len(got) != 0 {
		t.Fatalf("expected empty log after clear, got %d messages", len(got))
	}
}

func TestSetAllReplacesLog(t *testing.T) {
	store := room.NewStore()
	ctx := context.Background()

	store.Append(ctx, "r1", chat.Message{Author: "0xabc", Content: "old"})
	store.SetAll(ctx, "r1", []chat.Message{
		{ID: "m1", RoomID: "r1", Author: "0xabc", Content: "new", Kind: chat.KindNormal},
	})

	got := store.Get(ctx, "r1")
	if len(got) != 1 || got[0].Content != "new" {
		t.Fatalf("unexpected log after SetAll: %+v", got)
	}
}

func TestRoomsAreIsolated(t *testing.T) {
	store := room.NewStore()
	ctx := context.Background()

	store.Append(ctx, "r1", chat.Message{Author: "0xabc", Content: "one"})
	store.Append(ctx, "r2", chat.Message{Author: "0xdef", Content: "two"})
	store.Clear(ctx, "r1")

	if got := store.Get(ctx, "r2"); len(got) != 1 {
		t.Fatalf("clearing r1 touched r2: %+v", got)
	}
}
