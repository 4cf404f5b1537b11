// Package sse provides Server-Sent Events support for streaming responses.
package sse

import (
	"time"

	"github.com/streamchat/chat-service/internal/domain/models"
	"github.com/streamchat/chat-service/internal/services/provider"
)

// EventType discriminates the SSE event payloads.
type EventType string

const (
	// EventThreadInfo associates the exchange with a thread.
	EventThreadInfo EventType = "thread_info"
	// EventUserMessage confirms the persisted user message.
	EventUserMessage EventType = "user_message"
	// EventAIStart marks the beginning of the upstream response.
	EventAIStart EventType = "ai_start"
	// EventReasoningChunk is one reasoning delta.
	EventReasoningChunk EventType = "reasoning_chunk"
	// EventAnnotationsChunk carries citation annotations.
	EventAnnotationsChunk EventType = "annotations_chunk"
	// EventAIChunk is one content delta.
	EventAIChunk EventType = "ai_chunk"
	// EventAIComplete carries the final assistant message.
	EventAIComplete EventType = "ai_complete"
	// EventError is a terminal error for the exchange.
	EventError EventType = "error"
)

// ThreadInfoEvent carries the thread ID so the client can associate the
// exchange even for newly created threads.
type ThreadInfoEvent struct {
	Type     EventType `json:"type"`
	ThreadID string    `json:"threadId"`
}

// NewThreadInfoEvent creates a thread_info event.
func NewThreadInfoEvent(threadID string) *ThreadInfoEvent {
	return &ThreadInfoEvent{Type: EventThreadInfo, ThreadID: threadID}
}

// UserMessageSummary is the summarized view of the persisted user message.
// Image payloads are not re-sent; only the count is.
type UserMessageSummary struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	ImageCount int       `json:"imageCount"`
}

// UserMessageEvent confirms the persisted user message.
type UserMessageEvent struct {
	Type    EventType          `json:"type"`
	Message UserMessageSummary `json:"message"`
}

// NewUserMessageEvent creates a user_message event from a stored message.
func NewUserMessageEvent(m *models.ChatMessage) *UserMessageEvent {
	return &UserMessageEvent{
		Type: EventUserMessage,
		Message: UserMessageSummary{
			ID:         m.ID,
			Role:       string(m.Role),
			Content:    m.Content,
			Timestamp:  m.Timestamp,
			ImageCount: m.ImageCount(),
		},
	}
}

// AIStartEvent marks the beginning of the upstream response.
type AIStartEvent struct {
	Type EventType `json:"type"`
}

// NewAIStartEvent creates an ai_start event.
func NewAIStartEvent() *AIStartEvent {
	return &AIStartEvent{Type: EventAIStart}
}

// ReasoningChunkEvent is one reasoning delta plus the accumulated trace.
type ReasoningChunkEvent struct {
	Type          EventType            `json:"type"`
	Content       string               `json:"content"`
	FullReasoning string               `json:"fullReasoning"`
	TokenMetrics  *models.TokenMetrics `json:"tokenMetrics,omitempty"`
}

// NewReasoningChunkEvent creates a reasoning_chunk event.
func NewReasoningChunkEvent(delta, fullReasoning string, metrics *models.TokenMetrics) *ReasoningChunkEvent {
	return &ReasoningChunkEvent{
		Type:          EventReasoningChunk,
		Content:       delta,
		FullReasoning: fullReasoning,
		TokenMetrics:  metrics,
	}
}

// AnnotationsChunkEvent carries citation annotations.
type AnnotationsChunkEvent struct {
	Type        EventType             `json:"type"`
	Annotations []provider.Annotation `json:"annotations"`
}

// NewAnnotationsChunkEvent creates an annotations_chunk event.
func NewAnnotationsChunkEvent(annotations []provider.Annotation) *AnnotationsChunkEvent {
	return &AnnotationsChunkEvent{Type: EventAnnotationsChunk, Annotations: annotations}
}

// AIChunkEvent is one content delta plus the accumulated content.
type AIChunkEvent struct {
	Type         EventType            `json:"type"`
	Content      string               `json:"content"`
	FullContent  string               `json:"fullContent"`
	TokenMetrics *models.TokenMetrics `json:"tokenMetrics,omitempty"`
}

// NewAIChunkEvent creates an ai_chunk event.
func NewAIChunkEvent(delta, fullContent string, metrics *models.TokenMetrics) *AIChunkEvent {
	return &AIChunkEvent{
		Type:         EventAIChunk,
		Content:      delta,
		FullContent:  fullContent,
		TokenMetrics: metrics,
	}
}

// AICompleteEvent carries the full assistant message and final metrics.
type AICompleteEvent struct {
	Type             EventType            `json:"type"`
	AssistantMessage *models.ChatMessage  `json:"assistantMessage"`
	FullContent      string               `json:"fullContent"`
	TokenMetrics     *models.TokenMetrics `json:"tokenMetrics,omitempty"`
}

// NewAICompleteEvent creates an ai_complete event.
func NewAICompleteEvent(message *models.ChatMessage, metrics *models.TokenMetrics) *AICompleteEvent {
	return &AICompleteEvent{
		Type:             EventAIComplete,
		AssistantMessage: message,
		FullContent:      message.Content,
		TokenMetrics:     metrics,
	}
}

// ErrorEvent is terminal for the exchange.
type ErrorEvent struct {
	Type  EventType `json:"type"`
	Error string    `json:"error"`
}

// NewErrorEvent creates an error event.
func NewErrorEvent(message string) *ErrorEvent {
	return &ErrorEvent{Type: EventError, Error: message}
}
