package history

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/lwouters/profile-assistant/backend/internal/model/chat"
)

// Build projects a room's stored messages plus the newest user utterance
// into the ordered role-tagged request the generation backend expects.
// Assistant-authored entries map to the assistant role, every other author
// maps to the user role, and insertion order is conversation order. A
// non-empty context string becomes exactly one system message ahead of
// everything else. Loading and error entries are excluded: both are UI
// notices with fixed presentation text, and replaying them as assistant
// turns would feed the model content it never produced. Build never
// mutates its inputs.
func Build(messages []chat.Message, utterance, contextPrompt string) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages)+2)

	if strings.TrimSpace(contextPrompt) != "" {
		out = append(out, schema.SystemMessage(contextPrompt))
	}

	for _, msg := range messages {
		switch msg.Kind {
		case chat.KindLoading, chat.KindError:
			// Placeholders carry no conversational content.
			continue
		}
		if msg.FromAssistant() {
			out = append(out, schema.AssistantMessage(msg.Content, nil))
		} else {
			out = append(out, schema.UserMessage(msg.Content))
		}
	}

	return append(out, schema.UserMessage(utterance))
}
