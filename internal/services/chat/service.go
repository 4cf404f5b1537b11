// Package chat orchestrates streamed and synchronous chat exchanges:
// thread resolution, message persistence, upstream streaming, and token
// accounting.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/streamchat/chat-service/internal/core/docdb"
	domainerrors "github.com/streamchat/chat-service/internal/domain/errors"
	"github.com/streamchat/chat-service/internal/domain/models"
	"github.com/streamchat/chat-service/internal/services/provider"
	"github.com/streamchat/chat-service/internal/services/tokens"
)

const (
	// imageOnlyPlaceholder stands in for content on image-only user
	// messages.
	imageOnlyPlaceholder = "[Image message]"

	// reasoningOnlyPlaceholder stands in for content when a model emitted
	// reasoning but no answer text.
	reasoningOnlyPlaceholder = "[No response content]"

	defaultStreamTimeout = 5 * time.Minute
)

// Emitter receives the typed events of one streamed exchange, in order.
type Emitter interface {
	// Emit writes one event frame.
	Emit(event interface{}) error
	// Done terminates the stream.
	Done() error
}

// Request describes one chat exchange, streamed or synchronous.
type Request struct {
	UserID          string
	ThreadID        string
	Content         string
	ImageURL        string
	Images          []models.ImageAttachment
	ModelID         string
	UseReasoning    bool
	ReasoningEffort provider.ReasoningEffort
}

// Validate checks the request before any stream begins.
func (r *Request) Validate() error {
	if r.UserID == "" {
		return domainerrors.NewUnauthorizedError("authentication required")
	}
	if r.ModelID == "" {
		return domainerrors.NewValidationError("modelId is required", "")
	}
	if r.Content == "" && r.ImageURL == "" && len(r.Images) == 0 {
		return domainerrors.NewValidationError("message requires content or an image", "")
	}
	return nil
}

// SendResult is the response of a non-streaming exchange.
type SendResult struct {
	ThreadID          string              `json:"threadId"`
	Message           *models.ChatMessage `json:"message"`
	AssistantResponse *models.ChatMessage `json:"assistantResponse"`
}

// Config holds the dependencies for the chat service.
type Config struct {
	DocDB     docdb.Client
	Provider  provider.Client
	Estimator *tokens.Estimator

	// StreamTimeout bounds one whole streamed exchange.
	StreamTimeout time.Duration

	// PersistOnDisconnect keeps draining the upstream after the client
	// goes away and persists the completed assistant message.
	PersistOnDisconnect bool

	Logger *zerolog.Logger
}

// Service implements the chat exchange orchestration.
type Service struct {
	docDB               docdb.Client
	provider            provider.Client
	estimator           *tokens.Estimator
	streamTimeout       time.Duration
	persistOnDisconnect bool
	logger              zerolog.Logger
}

// NewService creates a new chat service.
func NewService(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.DocDB == nil {
		return nil, fmt.Errorf("docdb client is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider client is required")
	}
	if cfg.Estimator == nil {
		return nil, fmt.Errorf("estimator is required")
	}

	timeout := cfg.StreamTimeout
	if timeout == 0 {
		timeout = defaultStreamTimeout
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Service{
		docDB:               cfg.DocDB,
		provider:            cfg.Provider,
		estimator:           cfg.Estimator,
		streamTimeout:       timeout,
		persistOnDisconnect: cfg.PersistOnDisconnect,
		logger:              logger,
	}, nil
}

// resolveThread loads the requested thread or creates a new one titled
// from the message content.
func (s *Service) resolveThread(ctx context.Context, req *Request) (*models.ChatThread, error) {
	if req.ThreadID != "" {
		thread, err := s.docDB.Threads().GetThread(ctx, req.UserID, req.ThreadID)
		if err != nil {
			return nil, domainerrors.NewStorageError("get thread", err)
		}
		if thread == nil {
			return nil, domainerrors.NewNotFoundError("thread", req.ThreadID)
		}
		return thread, nil
	}

	thread := models.NewThread(req.UserID, req.Content)
	if err := s.docDB.Threads().CreateThread(ctx, thread); err != nil {
		return nil, domainerrors.NewStorageError("create thread", err)
	}
	return thread, nil
}

// buildUserMessage constructs the user message for persistence. Image-only
// messages get a placeholder content string.
func buildUserMessage(thread *models.ChatThread, req *Request) *models.ChatMessage {
	content := req.Content
	if content == "" {
		content = imageOnlyPlaceholder
	}
	msg := models.NewUserMessage(thread.ID, req.UserID, content)
	msg.ImageURL = req.ImageURL
	msg.Images = req.Images
	return msg
}

// reasoningRequested reports whether the upstream call should ask for a
// reasoning trace: forced-mode models always get it, optional-mode models
// only when the caller asked.
func reasoningRequested(model models.ModelConfig, req *Request) bool {
	switch model.ReasoningMode {
	case models.ReasoningForced:
		return true
	case models.ReasoningOptional:
		return req.UseReasoning
	default:
		return false
	}
}

// Send performs a synchronous exchange: persist the user message, wait for
// the complete upstream response, persist and return it.
func (s *Service) Send(ctx context.Context, req *Request) (*SendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.streamTimeout)
	defer cancel()

	thread, err := s.resolveThread(ctx, req)
	if err != nil {
		return nil, err
	}

	userMessage := buildUserMessage(thread, req)
	if err := s.docDB.Threads().AppendMessage(ctx, userMessage); err != nil {
		return nil, domainerrors.NewStorageError("append user message", err)
	}

	history, err := s.docDB.Threads().ListMessages(ctx, req.UserID, thread.ID)
	if err != nil {
		return nil, domainerrors.NewStorageError("list messages", err)
	}

	model, _ := models.LookupModel(req.ModelID)
	tracker := tokens.NewTracker()
	inputTokens := s.estimator.EstimateMessages(history, req.ModelID)

	result, err := s.provider.Chat(ctx, &provider.ChatRequest{
		ModelID:      req.ModelID,
		Messages:     history,
		UseReasoning: reasoningRequested(model, req),
		Effort:       req.ReasoningEffort,
	})
	if err != nil {
		return nil, domainerrors.NewUpstreamError("model request failed", err)
	}
	if result.Content == "" && result.Reasoning == "" {
		return nil, domainerrors.NewUpstreamError("no response received from the model", nil)
	}

	tracker.AddTokens(s.estimator.Estimate(result.Content+result.Reasoning, req.ModelID))

	assistant := buildAssistantMessage(thread.ID, req, result.Content, result.Reasoning, tracker.Metrics(inputTokens, model))
	if err := s.docDB.Threads().AppendMessage(ctx, assistant); err != nil {
		return nil, domainerrors.NewStorageError("append assistant message", err)
	}

	return &SendResult{
		ThreadID:          thread.ID,
		Message:           userMessage,
		AssistantResponse: assistant,
	}, nil
}

func buildAssistantMessage(threadID string, req *Request, content, reasoning string, metrics *models.TokenMetrics) *models.ChatMessage {
	if content == "" {
		content = reasoningOnlyPlaceholder
	}
	msg := models.NewAssistantMessage(threadID, req.UserID, content, req.ModelID)
	msg.Reasoning = reasoning
	msg.Metrics = metrics
	return msg
}
