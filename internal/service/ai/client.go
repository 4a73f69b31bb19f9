package ai

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/lwouters/profile-assistant/backend/internal/config"
)

// Usage reports the token accounting of one generation call.
type Usage struct {
	PromptTokens     int `json:"promptTokens,omitempty"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens,omitempty"`
}

// Result is the normalized outcome of one successful generation call.
type Result struct {
	Text         string `json:"text"`
	FinishReason string `json:"finishReason,omitempty"`
	Usage        Usage  `json:"usage"`
}

// Client issues exactly one generation request per call against the
// configured backend model. It holds no state across calls and performs no
// retries; failures surface as-is to the caller.
type Client struct {
	chatModel model.ChatModel
	modelName string
}

// NewClient creates the generation client from configuration. Sampling
// parameters are fixed at model construction, there is no per-call override.
func NewClient(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return &Client{chatModel: chatModel, modelName: cfg.Model}, nil
}

// NewClientWithModel wires an already constructed chat model. Used by tests.
func NewClientWithModel(chatModel model.ChatModel, modelName string) *Client {
	return &Client{chatModel: chatModel, modelName: modelName}
}

// Generate sends the assembled history to the backend and normalizes the
// response. Request shape and duration are logged with a per-call
// correlation id; nothing on the data path depends on logging.
func (c *Client) Generate(ctx context.Context, history []*schema.Message) (*Result, error) {
	requestID := newRequestID()
	log.Printf("[ai] request %s: model=%s messages=%d", requestID, c.modelName, len(history))

	start := time.Now()
	response, err := c.chatModel.Generate(ctx, history)
	duration := time.Since(start)

	if err != nil {
		log.Printf("[ai] request %s failed after %s: %v", requestID, duration, err)
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	log.Printf("[ai] request %s completed in %s, length=%d", requestID, duration, len(response.Content))
	return normalize(response), nil
}

// Stream opens a streamed generation for the assembled history. The caller
// owns the returned reader and must close it.
func (c *Client) Stream(ctx context.Context, history []*schema.Message) (*schema.StreamReader[*schema.Message], error) {
	requestID := newRequestID()
	log.Printf("[ai] stream %s: model=%s messages=%d", requestID, c.modelName, len(history))

	stream, err := c.chatModel.Stream(ctx, history)
	if err != nil {
		log.Printf("[ai] stream %s failed to open: %v", requestID, err)
		return nil, fmt.Errorf("streamed generation failed: %w", err)
	}

	return stream, nil
}

// Normalize converts a raw backend message into a Result.
func Normalize(response *schema.Message) *Result {
	return normalize(response)
}

func normalize(response *schema.Message) *Result {
	result := &Result{Text: response.Content}
	if meta := response.ResponseMeta; meta != nil {
		result.FinishReason = meta.FinishReason
		if usage := meta.Usage; usage != nil {
			result.Usage = Usage{
				PromptTokens:     usage.PromptTokens,
				CompletionTokens: usage.CompletionTokens,
				TotalTokens:      usage.TotalTokens,
			}
		}
	}
	return result
}

// newRequestID returns a short opaque correlation id for log lines.
func newRequestID() string {
	return uuid.NewString()[:8]
}
