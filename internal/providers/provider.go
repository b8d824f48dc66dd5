// internal/providers/provider.go

// Package providers defines the interface for talking to completion backends.
// It gives the completion client one streaming call shape regardless of whether
// the backend is OpenAI-compatible or an Ollama host.
package providers

import (
	"context"
	"time"
)

// ChatMessage represents a single message in a chat conversation.
// It contains the role of the message sender (e.g., "user", "assistant") and the message content.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamMetadata contains metadata about a completed chat stream,
// including timing and token counts when the backend reports them.
type StreamMetadata struct {
	Model            string
	CreatedAt        time.Time
	Done             bool
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
	TotalDuration    int64
}

// StreamRequest encapsulates all the information needed to initiate a chat stream.
type StreamRequest struct {
	Model            string
	Messages         []ChatMessage
	Temperature      float64
	MaxTokens        int
	DisableStreaming bool
}

// StreamCallbacks defines the callback functions that are invoked during a chat stream.
// OnChunk is called for each message chunk received, and OnComplete is called when the stream is finished.
type StreamCallbacks struct {
	OnChunk    func(ChatMessage) error
	OnComplete func(StreamMetadata) error
}

// ChatProvider is the interface that all completion backends implement.
type ChatProvider interface {
	// Name identifies the backend in logs.
	Name() string
	// Stream sends the conversation and forwards output to the callbacks.
	Stream(ctx context.Context, req StreamRequest, callbacks StreamCallbacks) error
	// Close cleans up any resources used by the provider.
	Close() error
}
