// Package client consumes the chat service's SSE stream and drives
// caller-supplied callbacks with reconstructed events.
package client

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/streamchat/chat-service/internal/api/sse"
	"github.com/streamchat/chat-service/internal/domain/models"
	"github.com/streamchat/chat-service/internal/services/provider"
)

// maxEventBytes bounds one SSE frame on the consumer side.
const maxEventBytes = 1 << 20

// ExchangeResult is the assembled request/response pair handed to the
// completion callback.
type ExchangeResult struct {
	ThreadID         string
	UserMessage      *sse.UserMessageSummary
	AssistantMessage *models.ChatMessage
	FullContent      string
	TokenMetrics     *models.TokenMetrics
}

// Handlers are the caller-supplied callbacks for stream events. Nil
// handlers are skipped.
type Handlers struct {
	OnThreadInfo     func(threadID string)
	OnUserMessage    func(message *sse.UserMessageSummary)
	OnAIStart        func()
	OnReasoningChunk func(delta, fullReasoning string, metrics *models.TokenMetrics)
	OnAnnotations    func(annotations []provider.Annotation)
	OnAIChunk        func(delta, fullContent string, metrics *models.TokenMetrics)
	OnComplete       func(result *ExchangeResult)

	// OnError is invoked at most once, for either an error event or a
	// network-level failure. The consumer never retries; resubmitting
	// the request is the caller's responsibility.
	OnError func(err error)
}

// event is the superset of all stream payload shapes; Type discriminates.
type event struct {
	Type             sse.EventType           `json:"type"`
	ThreadID         string                  `json:"threadId"`
	Message          *sse.UserMessageSummary `json:"message"`
	Content          string                  `json:"content"`
	FullContent      string                  `json:"fullContent"`
	FullReasoning    string                  `json:"fullReasoning"`
	Annotations      []provider.Annotation   `json:"annotations"`
	AssistantMessage *models.ChatMessage     `json:"assistantMessage"`
	TokenMetrics     *models.TokenMetrics    `json:"tokenMetrics"`
	Error            string                  `json:"error"`
}

// Consumer reads one exchange's event stream and dispatches callbacks in
// arrival order.
type Consumer struct {
	handlers Handlers

	threadID    string
	userMessage *sse.UserMessageSummary
	errReported bool
}

// NewConsumer creates a consumer with the given handlers.
func NewConsumer(handlers Handlers) *Consumer {
	return &Consumer{handlers: handlers}
}

// Consume reads the stream until the [DONE] sentinel, an error event, or a
// read failure. The body is always closed before returning. Buffering is
// byte-level, so multi-byte characters split across network chunks are
// reassembled before any line is decoded.
func (c *Consumer) Consume(body io.ReadCloser) error {
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), maxEventBytes)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}

		payload := strings.TrimPrefix(line, "data: ")
		if payload == sse.DoneSentinel {
			return nil
		}

		var evt event
		if err := json.Unmarshal([]byte(payload), &evt); err != nil {
			// A malformed line does not abort the stream; every event is
			// self-describing.
			log.Warn().Err(err).Msg("skipping malformed stream event")
			continue
		}

		if done := c.dispatch(&evt); done {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		c.reportError(fmt.Errorf("stream read failed: %w", err))
		return err
	}

	// Stream ended without [DONE]; treat as truncated.
	err := errors.New("stream ended unexpectedly")
	c.reportError(err)
	return err
}

// dispatch applies one event. Returns true when the event terminates the
// exchange.
func (c *Consumer) dispatch(evt *event) bool {
	switch evt.Type {
	case sse.EventThreadInfo:
		c.threadID = evt.ThreadID
		if c.handlers.OnThreadInfo != nil {
			c.handlers.OnThreadInfo(evt.ThreadID)
		}
	case sse.EventUserMessage:
		c.userMessage = evt.Message
		if c.handlers.OnUserMessage != nil {
			c.handlers.OnUserMessage(evt.Message)
		}
	case sse.EventAIStart:
		if c.handlers.OnAIStart != nil {
			c.handlers.OnAIStart()
		}
	case sse.EventReasoningChunk:
		if c.handlers.OnReasoningChunk != nil {
			c.handlers.OnReasoningChunk(evt.Content, evt.FullReasoning, evt.TokenMetrics)
		}
	case sse.EventAnnotationsChunk:
		if c.handlers.OnAnnotations != nil {
			c.handlers.OnAnnotations(evt.Annotations)
		}
	case sse.EventAIChunk:
		if c.handlers.OnAIChunk != nil {
			c.handlers.OnAIChunk(evt.Content, evt.FullContent, evt.TokenMetrics)
		}
	case sse.EventAIComplete:
		if c.handlers.OnComplete != nil {
			c.handlers.OnComplete(&ExchangeResult{
				ThreadID:         c.threadID,
				UserMessage:      c.userMessage,
				AssistantMessage: evt.AssistantMessage,
				FullContent:      evt.FullContent,
				TokenMetrics:     evt.TokenMetrics,
			})
		}
	case sse.EventError:
		c.reportError(errors.New(evt.Error))
		return true
	default:
		log.Warn().Str("type", string(evt.Type)).Msg("skipping unknown stream event")
	}
	return false
}

// reportError invokes the error callback at most once.
func (c *Consumer) reportError(err error) {
	if c.errReported {
		return
	}
	c.errReported = true
	if c.handlers.OnError != nil {
		c.handlers.OnError(err)
	}
}
