// Package provider defines the upstream LLM provider interfaces.
package provider

import (
	"context"

	"github.com/streamchat/chat-service/internal/domain/models"
)

// ChunkType represents the type of stream chunk. Chunks are tagged at the
// provider boundary so downstream code never inspects string prefixes.
type ChunkType string

const (
	// ChunkTypeContent is ordinary assistant content.
	ChunkTypeContent ChunkType = "content"
	// ChunkTypeReasoning is the model's exposed reasoning trace.
	ChunkTypeReasoning ChunkType = "reasoning"
	// ChunkTypeAnnotations carries citation annotations.
	ChunkTypeAnnotations ChunkType = "annotations"
	// ChunkTypeDone marks the end of the stream.
	ChunkTypeDone ChunkType = "done"
)

// URLCitation is a web citation attached by search-capable models.
type URLCitation struct {
	URL        string `json:"url"`
	Title      string `json:"title,omitempty"`
	Content    string `json:"content,omitempty"`
	StartIndex int    `json:"start_index,omitempty"`
	EndIndex   int    `json:"end_index,omitempty"`
}

// Annotation is one annotation entry on a streamed response.
type Annotation struct {
	Type        string       `json:"type"`
	URLCitation *URLCitation `json:"url_citation,omitempty"`
}

// StreamChunk represents one unit of streamed output.
type StreamChunk struct {
	Type        ChunkType
	Content     string
	Annotations []Annotation
}

// StreamReader allows reading stream chunks one at a time.
type StreamReader interface {
	// Read returns the next chunk from the stream.
	// Returns io.EOF when the stream is exhausted.
	Read() (*StreamChunk, error)

	// Close releases resources associated with the reader.
	Close() error
}

// ReasoningEffort controls how much reasoning the model is asked to do.
type ReasoningEffort string

const (
	EffortLow    ReasoningEffort = "low"
	EffortMedium ReasoningEffort = "medium"
	EffortHigh   ReasoningEffort = "high"
)

// ChatRequest represents a request to generate a response for a
// conversation history.
type ChatRequest struct {
	// ModelID is the provider-qualified model identifier.
	ModelID string

	// Messages is the conversation history in chronological order,
	// ending with the newest user message.
	Messages []*models.ChatMessage

	// UseReasoning asks the model to expose its reasoning trace.
	UseReasoning bool

	// Effort tunes reasoning depth when UseReasoning is set.
	Effort ReasoningEffort
}

// ChatResult is the complete response from a non-streaming invocation.
type ChatResult struct {
	Content     string
	Reasoning   string
	Annotations []Annotation
}

// Client defines the interface for invoking an upstream model provider.
type Client interface {
	// Chat sends a conversation and returns the complete response.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// StreamChat sends a conversation and returns a reader for the
	// streamed response.
	StreamChat(ctx context.Context, req *ChatRequest) (StreamReader, error)

	// Close releases any resources held by the client.
	Close() error
}
