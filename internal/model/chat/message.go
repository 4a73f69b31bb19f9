package chat

import "time"

// Kind classifies a log entry beyond plain conversation text.
type Kind string

const (
	// KindNormal is a settled user or assistant message.
	KindNormal Kind = "normal"
	// KindLoading is the transient content-less placeholder shown while a
	// response is pending. At most one exists per room.
	KindLoading Kind = "loading"
	// KindPartial is a streamed message whose content still grows in place.
	// While present it is always the last entry of the room's log.
	KindPartial Kind = "partial"
	// KindError is the fixed user-facing entry appended when a turn fails.
	KindError Kind = "error"
)

// AssistantAuthor is the sentinel identity for assistant-authored messages.
// Every other author value is treated as a human participant.
const AssistantAuthor = "assistant"

// Message is one entry in a room's ordered log.
type Message struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	Author      string    `json:"author"`
	Content     string    `json:"content"`
	Kind        Kind      `json:"kind"`
	Attachments []string  `json:"attachments,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FromAssistant reports whether the message was authored by the assistant.
func (m Message) FromAssistant() bool {
	return m.Author == AssistantAuthor
}
