package turn

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/lwouters/profile-assistant/backend/internal/metrics"
	"github.com/lwouters/profile-assistant/backend/internal/model/chat"
	"github.com/lwouters/profile-assistant/backend/internal/service/ai"
	"github.com/lwouters/profile-assistant/backend/internal/service/history"
	"github.com/lwouters/profile-assistant/backend/internal/service/room"
)

// ErrTurnInFlight is returned when a room already has an unresolved turn.
// The caller retries once the pending turn settles.
var ErrTurnInFlight = errors.New("turn already in flight for room")

// ErrorMessageContent is the fixed user-facing text appended when a turn
// fails. The raw backend error is only logged, never shown.
const ErrorMessageContent = "An error occurred while sending the message, please try again."

// Generator issues generation requests for an assembled history.
type Generator interface {
	Generate(ctx context.Context, history []*schema.Message) (*ai.Result, error)
	Stream(ctx context.Context, history []*schema.Message) (*schema.StreamReader[*schema.Message], error)
}

// Archiver persists settled turns. Archival is best-effort; failures are
// logged and never affect the room's log.
type Archiver interface {
	SaveTurn(ctx context.Context, roomID string, user, assistant chat.Message) error
}

// DisabledGenerator stands in when no generation backend is configured.
// Every turn reconciles as a failure.
type DisabledGenerator struct{}

// Generate always fails.
func (DisabledGenerator) Generate(context.Context, []*schema.Message) (*ai.Result, error) {
	return nil, errors.New("generation backend not configured")
}

// Stream always fails.
func (DisabledGenerator) Stream(context.Context, []*schema.Message) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("generation backend not configured")
}

// roomState tracks the in-flight guard and the clear epoch of one room.
// recMu serializes reconciliation writes against Clear so the epoch check
// and the store mutations it guards happen as one step.
type roomState struct {
	inFlight bool
	epoch    uint64
	recMu    sync.Mutex
}

// Orchestrator drives one user turn end-to-end: optimistic insert, loading
// placeholder, dispatch, and reconciliation of the result or failure.
type Orchestrator struct {
	store   *room.Store
	gen     Generator
	archive Archiver
	signals *Signals
	metrics *metrics.Metrics

	mu    sync.Mutex
	rooms map[string]*roomState
}

// NewOrchestrator wires the turn pipeline. archive and m may be nil.
func NewOrchestrator(store *room.Store, gen Generator, archive Archiver, signals *Signals, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		store:   store,
		gen:     gen,
		archive: archive,
		signals: signals,
		metrics: m,
		rooms:   make(map[string]*roomState),
	}
}

// Signals exposes the re-anchor signal bus.
func (o *Orchestrator) Signals() *Signals {
	return o.signals
}

// SubmitTurn runs one turn for the room and returns the settled log.
// Whitespace-only input is a no-op, not an error. A second submission for
// the same room while one is pending is rejected with ErrTurnInFlight.
func (o *Orchestrator) SubmitTurn(ctx context.Context, roomID, rawText, author, contextPrompt string) ([]chat.Message, error) {
	if strings.TrimSpace(rawText) == "" {
		return o.store.Get(ctx, roomID), nil
	}

	epoch, err := o.begin(roomID)
	if err != nil {
		return nil, err
	}
	defer o.finish(roomID)

	o.metrics.TurnStarted()

	prior := o.store.Get(ctx, roomID)
	userMsg := o.store.Append(ctx, roomID, chat.Message{Author: author, Content: rawText})
	o.store.Append(ctx, roomID, chat.Message{Author: chat.AssistantAuthor, Kind: chat.KindLoading})

	request := history.Build(prior, rawText, contextPrompt)

	result, genErr := o.gen.Generate(ctx, request)

	var assistantMsg chat.Message
	settled := o.withLiveEpoch(roomID, epoch, func() {
		if genErr != nil {
			o.reconcileFailure(ctx, roomID, genErr)
			return
		}
		assistantMsg = o.reconcileSuccess(ctx, roomID, result)
	})
	if !settled {
		// Room was cleared while the call was in flight; the result no
		// longer corresponds to the live log.
		log.Printf("[turn] discarding stale reconciliation for room=%s", roomID)
		return o.store.Get(ctx, roomID), nil
	}

	if genErr == nil {
		o.archiveTurn(ctx, roomID, userMsg, assistantMsg)
	}
	return o.store.Get(ctx, roomID), nil
}

// StreamTurn runs one turn with incremental delivery. Each delta is pushed
// through the store's streaming append and forwarded to onDelta; the final
// message replaces the trailing partial when the stream completes.
func (o *Orchestrator) StreamTurn(ctx context.Context, roomID, rawText, author, contextPrompt string, onDelta func(string)) ([]chat.Message, error) {
	if strings.TrimSpace(rawText) == "" {
		return o.store.Get(ctx, roomID), nil
	}

	epoch, err := o.begin(roomID)
	if err != nil {
		return nil, err
	}
	defer o.finish(roomID)

	o.metrics.TurnStarted()

	prior := o.store.Get(ctx, roomID)
	userMsg := o.store.Append(ctx, roomID, chat.Message{Author: author, Content: rawText})
	o.store.Append(ctx, roomID, chat.Message{Author: chat.AssistantAuthor, Kind: chat.KindLoading})

	request := history.Build(prior, rawText, contextPrompt)

	stream, genErr := o.gen.Stream(ctx, request)
	if genErr != nil {
		o.withLiveEpoch(roomID, epoch, func() {
			o.reconcileFailure(ctx, roomID, genErr)
		})
		return o.store.Get(ctx, roomID), nil
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	placeholderDropped := false

	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			o.withLiveEpoch(roomID, epoch, func() {
				o.reconcileFailure(ctx, roomID, recvErr)
			})
			return o.store.Get(ctx, roomID), nil
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content == "" {
			continue
		}

		delivered := o.withLiveEpoch(roomID, epoch, func() {
			if !placeholderDropped {
				o.store.RemoveLoading(ctx, roomID)
				placeholderDropped = true
			}
			o.store.AppendDelta(ctx, roomID, chat.Message{Author: chat.AssistantAuthor, Content: chunk.Content})
		})
		if delivered && onDelta != nil {
			onDelta(chunk.Content)
		}
	}

	response, concatErr := schema.ConcatMessages(chunks)
	if concatErr != nil {
		o.withLiveEpoch(roomID, epoch, func() {
			o.reconcileFailure(ctx, roomID, concatErr)
		})
		return o.store.Get(ctx, roomID), nil
	}

	var assistantMsg chat.Message
	settled := o.withLiveEpoch(roomID, epoch, func() {
		assistantMsg = o.reconcileSuccess(ctx, roomID, ai.Normalize(response))
	})
	if !settled {
		log.Printf("[turn] discarding stale stream reconciliation for room=%s", roomID)
		return o.store.Get(ctx, roomID), nil
	}

	o.archiveTurn(ctx, roomID, userMsg, assistantMsg)
	return o.store.Get(ctx, roomID), nil
}

// Clear empties the room's log and fences any in-flight reconciliation.
// The epoch bump and the store wipe happen under the room's reconcile lock
// so a reconciliation that already passed its epoch check cannot write into
// the cleared log.
func (o *Orchestrator) Clear(ctx context.Context, roomID string) {
	st := o.stateFor(roomID)

	st.recMu.Lock()
	o.mu.Lock()
	st.epoch++
	o.mu.Unlock()
	o.store.Clear(ctx, roomID)
	st.recMu.Unlock()

	o.signals.Publish(roomID, EventCleared)
}

func (o *Orchestrator) begin(roomID string) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := o.state(roomID)
	if st.inFlight {
		return 0, ErrTurnInFlight
	}
	st.inFlight = true
	return st.epoch, nil
}

func (o *Orchestrator) finish(roomID string) {
	o.mu.Lock()
	o.state(roomID).inFlight = false
	o.mu.Unlock()
}

// withLiveEpoch runs fn only while the room's epoch still matches, holding
// the room's reconcile lock for the duration so Clear cannot interleave
// between the check and fn's store writes. Reports whether fn ran.
func (o *Orchestrator) withLiveEpoch(roomID string, epoch uint64, fn func()) bool {
	st := o.stateFor(roomID)

	st.recMu.Lock()
	defer st.recMu.Unlock()

	o.mu.Lock()
	alive := st.epoch == epoch
	o.mu.Unlock()
	if !alive {
		return false
	}

	fn()
	return true
}

func (o *Orchestrator) stateFor(roomID string) *roomState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state(roomID)
}

func (o *Orchestrator) state(roomID string) *roomState {
	st, ok := o.rooms[roomID]
	if !ok {
		st = &roomState{}
		o.rooms[roomID] = st
	}
	return st
}

func (o *Orchestrator) reconcileSuccess(ctx context.Context, roomID string, result *ai.Result) chat.Message {
	o.store.RemoveLoading(ctx, roomID)
	assistantMsg := o.store.Append(ctx, roomID, chat.Message{
		Author:  chat.AssistantAuthor,
		Content: result.Text,
	})
	o.metrics.TurnSucceeded()
	o.signals.Publish(roomID, EventSettled)
	return assistantMsg
}

func (o *Orchestrator) reconcileFailure(ctx context.Context, roomID string, cause error) {
	log.Printf("[turn] generation failed for room=%s: %v", roomID, cause)
	o.store.RemoveLoading(ctx, roomID)
	o.store.Append(ctx, roomID, chat.Message{
		Author:  chat.AssistantAuthor,
		Content: ErrorMessageContent,
		Kind:    chat.KindError,
	})
	o.metrics.TurnFailed()
	o.signals.Publish(roomID, EventSettled)
}

func (o *Orchestrator) archiveTurn(ctx context.Context, roomID string, user, assistant chat.Message) {
	if o.archive == nil {
		return
	}
	if err := o.archive.SaveTurn(ctx, roomID, user, assistant); err != nil {
		log.Printf("[turn] failed to archive turn for room=%s: %v", roomID, err)
	}
}
