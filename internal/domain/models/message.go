// Package models contains domain models for the chat service.
package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the role of a message sender.
type MessageRole string

const (
	// RoleUser represents a message from the user.
	RoleUser MessageRole = "user"
	// RoleAssistant represents a message from the assistant.
	RoleAssistant MessageRole = "assistant"
)

// ImageAttachment is a single image attached to a message.
type ImageAttachment struct {
	URL      string `json:"url" bson:"url"`
	MimeType string `json:"mimeType,omitempty" bson:"mimeType,omitempty"`
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
}

// ChatMessage represents one message in a thread. Messages are immutable
// after creation except for TokenMetrics, which is attached once streaming
// completes.
type ChatMessage struct {
	ID        string            `json:"id" bson:"_id"`
	ThreadID  string            `json:"threadId" bson:"threadId"`
	UserID    string            `json:"userId" bson:"userId"`
	Role      MessageRole       `json:"role" bson:"role"`
	Content   string            `json:"content" bson:"content"`
	Timestamp time.Time         `json:"timestamp" bson:"timestamp"`
	ImageURL  string            `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Images    []ImageAttachment `json:"images,omitempty" bson:"images,omitempty"`
	ModelID   string            `json:"modelId,omitempty" bson:"modelId,omitempty"`
	Reasoning string            `json:"reasoning,omitempty" bson:"reasoning,omitempty"`
	Metrics   *TokenMetrics     `json:"tokenMetrics,omitempty" bson:"tokenMetrics,omitempty"`
}

// NewUserMessage creates a user message for the given thread.
func NewUserMessage(threadID, userID, content string) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		UserID:    userID,
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssistantMessage creates an assistant message for the given thread.
func NewAssistantMessage(threadID, userID, content, modelID string) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		UserID:    userID,
		Role:      RoleAssistant,
		Content:   content,
		ModelID:   modelID,
		Timestamp: time.Now().UTC(),
	}
}

// ImageCount returns the number of images attached to the message, counting
// the legacy single-image field when no image list is present.
func (m *ChatMessage) ImageCount() int {
	if len(m.Images) > 0 {
		return len(m.Images)
	}
	if m.ImageURL != "" {
		return 1
	}
	return 0
}

// EstimatedCost is a monetary estimate for one exchange, in USD.
type EstimatedCost struct {
	Input  float64 `json:"input" bson:"input"`
	Output float64 `json:"output" bson:"output"`
	Total  float64 `json:"total" bson:"total"`
}

// TokenMetrics captures token accounting for one streamed exchange.
// TotalTokens is always InputTokens + OutputTokens, and EstimatedCost.Total
// is always Input + Output within rounding tolerance.
type TokenMetrics struct {
	InputTokens     int           `json:"inputTokens" bson:"inputTokens"`
	OutputTokens    int           `json:"outputTokens" bson:"outputTokens"`
	TotalTokens     int           `json:"totalTokens" bson:"totalTokens"`
	TokensPerSecond float64       `json:"tokensPerSecond" bson:"tokensPerSecond"`
	StartTime       time.Time     `json:"startTime" bson:"startTime"`
	EndTime         time.Time     `json:"endTime,omitempty" bson:"endTime,omitempty"`
	DurationMs      int64         `json:"durationMs,omitempty" bson:"durationMs,omitempty"`
	EstimatedCost   EstimatedCost `json:"estimatedCost" bson:"estimatedCost"`
}
