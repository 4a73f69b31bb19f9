package stream

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/lwouters/profile-assistant/backend/internal/service/ai"
	"github.com/lwouters/profile-assistant/backend/internal/service/room"
	"github.com/lwouters/profile-assistant/backend/internal/service/turn"
)

type stubGenerator struct {
	chunks []string
}

func (g *stubGenerator) Generate(context.Context, []*schema.Message) (*ai.Result, error) {
	return &ai.Result{Text: strings.Join(g.chunks, "")}, nil
}

func (g *stubGenerator) Stream(context.Context, []*schema.Message) (*schema.StreamReader[*schema.Message], error) {
	chunks := make([]*schema.Message, 0, len(g.chunks))
	for _, c := range g.chunks {
		chunks = append(chunks, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(chunks), nil
}

func TestHandleStreamRequestEmitsDeltasAndEnd(t *testing.T) {
	store := room.NewStore()
	orch := turn.NewOrchestrator(store, &stubGenerator{chunks: []string{"he", "llo"}}, nil, turn.NewSignals(), nil)
	handler := New(orch)

	resp := httptest.NewRecorder()
	if err := handler.HandleStreamRequest(context.Background(), resp, "r1", "hi", "0xabc", ""); err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	body := resp.Body.String()
	for _, want := range []string{`"event":"start"`, `"event":"delta"`, `"event":"message"`, `"event":"end"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %s in stream body:\n%s", want, body)
		}
	}
	if !strings.Contains(body, `"content":"hello"`) {
		t.Fatalf("final message missing from stream body:\n%s", body)
	}

	log := store.Get(context.Background(), "r1")
	if len(log) != 2 || log[1].Content != "hello" {
		t.Fatalf("unexpected settled log: %+v", log)
	}
}
