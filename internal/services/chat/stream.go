package chat

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/streamchat/chat-service/internal/api/sse"
	domainerrors "github.com/streamchat/chat-service/internal/domain/errors"
	"github.com/streamchat/chat-service/internal/domain/models"
	"github.com/streamchat/chat-service/internal/services/provider"
	"github.com/streamchat/chat-service/internal/services/tokens"
)

// Stream runs one streamed exchange against the emitter. The request must
// already be validated; failures from this point on surface as error
// events, never as HTTP statuses, since SSE headers are out by now.
func (s *Service) Stream(ctx context.Context, req *Request, emit Emitter) {
	ctx, cancel := context.WithTimeout(ctx, s.streamTimeout)
	defer cancel()

	sink := newSink(emit, s.logger)

	thread, err := s.resolveThread(ctx, req)
	if err != nil {
		s.failStream(sink, err)
		return
	}
	sink.emit(sse.NewThreadInfoEvent(thread.ID))

	userMessage := buildUserMessage(thread, req)
	if err := s.docDB.Threads().AppendMessage(ctx, userMessage); err != nil {
		s.failStream(sink, domainerrors.NewStorageError("append user message", err))
		return
	}
	sink.emit(sse.NewUserMessageEvent(userMessage))

	// Reload so the history passed upstream includes the new message.
	history, err := s.docDB.Threads().ListMessages(ctx, req.UserID, thread.ID)
	if err != nil {
		s.failStream(sink, domainerrors.NewStorageError("list messages", err))
		return
	}

	model, _ := models.LookupModel(req.ModelID)
	inputTokens := s.estimator.EstimateMessages(history, req.ModelID)
	tracker := tokens.NewTracker()

	sink.emit(sse.NewAIStartEvent())

	reader, err := s.provider.StreamChat(ctx, &provider.ChatRequest{
		ModelID:      req.ModelID,
		Messages:     history,
		UseReasoning: reasoningRequested(model, req),
		Effort:       req.ReasoningEffort,
	})
	if err != nil {
		s.failStream(sink, domainerrors.NewUpstreamError("model request failed", err))
		return
	}
	defer reader.Close()

	var fullContent, fullReasoning strings.Builder
	var streamErr error

relay:
	for {
		if sink.clientGone() && !s.persistOnDisconnect {
			s.logger.Warn().
				Str("thread_id", thread.ID).
				Msg("client disconnected, aborting upstream stream")
			return
		}

		chunk, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			streamErr = err
			break
		}

		if chunk.Type == "" {
			// Providers still on the prefix-tagged string protocol emit
			// untyped chunks; reclassify before relaying.
			chunk = provider.ParseLegacyChunk(chunk.Content)
		}

		switch chunk.Type {
		case provider.ChunkTypeReasoning:
			fullReasoning.WriteString(chunk.Content)
			tracker.AddTokens(s.estimator.Estimate(chunk.Content, req.ModelID))
			sink.emit(sse.NewReasoningChunkEvent(chunk.Content, fullReasoning.String(), tracker.Metrics(inputTokens, model)))
		case provider.ChunkTypeContent:
			fullContent.WriteString(chunk.Content)
			tracker.AddTokens(s.estimator.Estimate(chunk.Content, req.ModelID))
			sink.emit(sse.NewAIChunkEvent(chunk.Content, fullContent.String(), tracker.Metrics(inputTokens, model)))
		case provider.ChunkTypeAnnotations:
			sink.emit(sse.NewAnnotationsChunkEvent(chunk.Annotations))
		case provider.ChunkTypeDone:
			break relay
		}
	}

	if streamErr != nil {
		s.logger.Error().
			Err(streamErr).
			Str("thread_id", thread.ID).
			Str("model_id", req.ModelID).
			Msg("upstream stream failed")
		if errors.Is(streamErr, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			s.failStream(sink, domainerrors.NewTimeoutError("model stream"))
			return
		}
		s.failStream(sink, domainerrors.NewUpstreamError("model stream failed", streamErr))
		return
	}

	if fullContent.Len() == 0 && fullReasoning.Len() == 0 {
		// Nothing to persist; the exchange produced no message.
		s.failStream(sink, domainerrors.NewUpstreamError("no response received from the model", nil))
		return
	}

	metrics := tracker.Metrics(inputTokens, model)
	assistant := buildAssistantMessage(thread.ID, req, fullContent.String(), fullReasoning.String(), metrics)
	if err := s.docDB.Threads().AppendMessage(ctx, assistant); err != nil {
		s.logger.Error().
			Err(err).
			Str("thread_id", thread.ID).
			Msg("failed to persist assistant message")
		s.failStream(sink, domainerrors.NewStorageError("append assistant message", err))
		return
	}

	sink.emit(sse.NewAICompleteEvent(assistant, metrics))
	sink.done()
}

// failStream converts an error into a terminal error event followed by the
// stream sentinel.
func (s *Service) failStream(sink *eventSink, err error) {
	message := "internal error"
	if domainErr, ok := domainerrors.GetDomainError(err); ok {
		message = domainErr.Message
	}
	sink.emit(sse.NewErrorEvent(message))
	sink.done()
}
