package history_test

import (
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/lwouters/profile-assistant/backend/internal/model/chat"
	"github.com/lwouters/profile-assistant/backend/internal/service/history"
)

func transcript() []chat.Message {
	return []chat.Message{
		{Author: "0xabc", Content: "u1", Kind: chat.KindNormal},
		{Author: chat.AssistantAuthor, Content: "a1", Kind: chat.KindNormal},
		{Author: "0xabc", Content: "u2", Kind: chat.KindNormal},
	}
}

func TestBuildWithoutContext(t *testing.T) {
	got := history.Build(transcript(), "u3", "")

	wantRoles := []schema.RoleType{schema.User, schema.Assistant, schema.User, schema.User}
	wantContent := []string{"u1", "a1", "u2", "u3"}

	if len(got) != len(wantRoles) {
		t.Fatalf("expected %d entries, got %d", len(wantRoles), len(got))
	}
	for i := range got {
		if got[i].Role != wantRoles[i] {
			t.Fatalf("entry %d: expected role %s, got %s", i, wantRoles[i], got[i].Role)
		}
		if got[i].Content != wantContent[i] {
			t.Fatalf("entry %d: expected content %q, got %q", i, wantContent[i], got[i].Content)
		}
	}
}

func TestBuildPrependsSingleSystemEntry(t *testing.T) {
	got := history.Build(transcript(), "u3", "X")

	if len(got) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(got))
	}
	if got[0].Role != schema.System || got[0].Content != "X" {
		t.Fatalf("expected leading system entry X, got %s:%q", got[0].Role, got[0].Content)
	}
	for _, m := range got[1:] {
		if m.Role == schema.System {
			t.Fatal("found a second system entry")
		}
	}
}

func TestBuildEmptyRoom(t *testing.T) {
	got := history.Build(nil, "hello", "")

	if len(got) != 1 {
		t.Fatalf("expected only the new utterance, got %d entries", len(got))
	}
	if got[0].Role != schema.User || got[0].Content != "hello" {
		t.Fatalf("unexpected entry: %s:%q", got[0].Role, got[0].Content)
	}
}

func TestBuildSkipsPlaceholders(t *testing.T) {
	messages := append(transcript(),
		chat.Message{Author: chat.AssistantAuthor, Kind: chat.KindLoading},
		chat.Message{Author: chat.AssistantAuthor, Content: "try again", Kind: chat.KindError},
	)

	got := history.Build(messages, "u3", "")
	if len(got) != 4 {
		t.Fatalf("placeholders leaked into history: %d entries", len(got))
	}
}
