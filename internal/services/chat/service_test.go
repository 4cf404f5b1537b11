// Package chat_test provides tests for the chat exchange orchestration.
package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/streamchat/chat-service/internal/api/sse"
	"github.com/streamchat/chat-service/internal/domain/models"
	"github.com/streamchat/chat-service/internal/services/chat"
	"github.com/streamchat/chat-service/internal/services/provider"
	"github.com/streamchat/chat-service/internal/services/tokens"
	"github.com/streamchat/chat-service/tests/mocks"
)

// recordingEmitter captures emitted events in order.
type recordingEmitter struct {
	events []interface{}
	done   bool
}

func (e *recordingEmitter) Emit(event interface{}) error {
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEmitter) Done() error {
	e.done = true
	return nil
}

// eventTypes flattens the recorded events to their type tags.
func (e *recordingEmitter) eventTypes() []sse.EventType {
	types := make([]sse.EventType, 0, len(e.events))
	for _, evt := range e.events {
		switch v := evt.(type) {
		case *sse.ThreadInfoEvent:
			types = append(types, v.Type)
		case *sse.UserMessageEvent:
			types = append(types, v.Type)
		case *sse.AIStartEvent:
			types = append(types, v.Type)
		case *sse.ReasoningChunkEvent:
			types = append(types, v.Type)
		case *sse.AnnotationsChunkEvent:
			types = append(types, v.Type)
		case *sse.AIChunkEvent:
			types = append(types, v.Type)
		case *sse.AICompleteEvent:
			types = append(types, v.Type)
		case *sse.ErrorEvent:
			types = append(types, v.Type)
		}
	}
	return types
}

func newTestService(t *testing.T, db *mocks.MockDocDBClient, prov *mocks.MockProviderClient) *chat.Service {
	t.Helper()
	svc, err := chat.NewService(&chat.Config{
		DocDB:               db,
		Provider:            prov,
		Estimator:           tokens.NewEstimator(),
		PersistOnDisconnect: true,
	})
	require.NoError(t, err)
	return svc
}

func contentChunks(parts ...string) []*provider.StreamChunk {
	chunks := make([]*provider.StreamChunk, 0, len(parts))
	for _, p := range parts {
		chunks = append(chunks, &provider.StreamChunk{Type: provider.ChunkTypeContent, Content: p})
	}
	return chunks
}

// TestStream_NewThreadHappyPath tests the full event sequence for a new
// thread and that the assistant message is persisted with the
// reassembled content.
func TestStream_NewThreadHappyPath(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	prov := &mocks.MockProviderClient{}

	var persisted []*models.ChatMessage
	db.ThreadsCollection.On("CreateThread", mock.Anything, mock.Anything).Return(nil)
	db.ThreadsCollection.On("AppendMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = append(persisted, args.Get(1).(*models.ChatMessage))
		}).Return(nil)
	db.ThreadsCollection.On("ListMessages", mock.Anything, "user-1", mock.Anything).
		Return([]*models.ChatMessage{{Content: "hello", Role: models.RoleUser}}, nil)

	reader := &mocks.ScriptedStreamReader{Chunks: contentChunks("Hel", "lo ", "world")}
	prov.On("StreamChat", mock.Anything, mock.Anything).Return(reader, nil)

	emitter := &recordingEmitter{}
	svc := newTestService(t, db, prov)

	svc.Stream(context.Background(), &chat.Request{
		UserID:  "user-1",
		Content: "hello",
		ModelID: "openai/gpt-4o",
	}, emitter)

	assert.Equal(t, []sse.EventType{
		sse.EventThreadInfo,
		sse.EventUserMessage,
		sse.EventAIStart,
		sse.EventAIChunk,
		sse.EventAIChunk,
		sse.EventAIChunk,
		sse.EventAIComplete,
	}, emitter.eventTypes())
	assert.True(t, emitter.done)
	assert.True(t, reader.Closed())

	// User message then assistant message were persisted.
	require.Len(t, persisted, 2)
	assert.Equal(t, models.RoleUser, persisted[0].Role)
	assert.Equal(t, models.RoleAssistant, persisted[1].Role)
	assert.Equal(t, "Hello world", persisted[1].Content)
	require.NotNil(t, persisted[1].Metrics)
	assert.Equal(t, persisted[1].Metrics.InputTokens+persisted[1].Metrics.OutputTokens, persisted[1].Metrics.TotalTokens)

	// The final event carries the same content the chunks add up to.
	last := emitter.events[len(emitter.events)-1].(*sse.AICompleteEvent)
	assert.Equal(t, "Hello world", last.FullContent)
}

// TestStream_ExistingThread tests that a known thread ID is reused and no
// thread is created.
func TestStream_ExistingThread(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	prov := &mocks.MockProviderClient{}

	thread := models.NewThread("user-1", "earlier")
	db.ThreadsCollection.On("GetThread", mock.Anything, "user-1", thread.ID).Return(thread, nil)
	db.ThreadsCollection.On("AppendMessage", mock.Anything, mock.Anything).Return(nil)
	db.ThreadsCollection.On("ListMessages", mock.Anything, "user-1", thread.ID).
		Return([]*models.ChatMessage{{Content: "earlier"}, {Content: "again"}}, nil)
	prov.On("StreamChat", mock.Anything, mock.Anything).
		Return(&mocks.ScriptedStreamReader{Chunks: contentChunks("ok")}, nil)

	emitter := &recordingEmitter{}
	svc := newTestService(t, db, prov)

	svc.Stream(context.Background(), &chat.Request{
		UserID:   "user-1",
		ThreadID: thread.ID,
		Content:  "again",
		ModelID:  "openai/gpt-4o",
	}, emitter)

	info := emitter.events[0].(*sse.ThreadInfoEvent)
	assert.Equal(t, thread.ID, info.ThreadID)
	db.ThreadsCollection.AssertNotCalled(t, "CreateThread", mock.Anything, mock.Anything)
}

// TestStream_LegacyUntypedChunks tests that untyped chunks from a provider
// still on the prefix-tagged string protocol are reclassified before relay.
func TestStream_LegacyUntypedChunks(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	prov := &mocks.MockProviderClient{}

	thread := models.NewThread("user-1", "legacy")
	db.ThreadsCollection.On("GetThread", mock.Anything, "user-1", thread.ID).Return(thread, nil)
	db.ThreadsCollection.On("AppendMessage", mock.Anything, mock.Anything).Return(nil)
	db.ThreadsCollection.On("ListMessages", mock.Anything, "user-1", thread.ID).
		Return([]*models.ChatMessage{{Content: "legacy"}}, nil)
	prov.On("StreamChat", mock.Anything, mock.Anything).
		Return(&mocks.ScriptedStreamReader{Chunks: []*provider.StreamChunk{
			{Content: "reasoning:thinking it over"},
			{Content: "content:The answer"},
			{Content: " is 42."},
		}}, nil)

	emitter := &recordingEmitter{}
	svc := newTestService(t, db, prov)

	svc.Stream(context.Background(), &chat.Request{
		UserID:   "user-1",
		ThreadID: thread.ID,
		Content:  "legacy",
		ModelID:  "openai/gpt-4o",
	}, emitter)

	assert.Equal(t, []sse.EventType{
		sse.EventThreadInfo,
		sse.EventUserMessage,
		sse.EventAIStart,
		sse.EventReasoningChunk,
		sse.EventAIChunk,
		sse.EventAIChunk,
		sse.EventAIComplete,
	}, emitter.eventTypes())

	complete := emitter.events[len(emitter.events)-1].(*sse.AICompleteEvent)
	assert.Equal(t, "The answer is 42.", complete.FullContent)
	assert.Equal(t, "thinking it over", complete.AssistantMessage.Reasoning)
}

// TestStream_UnknownThread tests that an unknown thread ID produces an
// error event and nothing else.
func TestStream_UnknownThread(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	prov := &mocks.MockProviderClient{}

	db.ThreadsCollection.On("GetThread", mock.Anything, "user-1", "missing").Return(nil, nil)

	emitter := &recordingEmitter{}
	svc := newTestService(t, db, prov)

	svc.Stream(context.Background(), &chat.Request{
		UserID:   "user-1",
		ThreadID: "missing",
		Content:  "hello",
		ModelID:  "openai/gpt-4o",
	}, emitter)

	assert.Equal(t, []sse.EventType{sse.EventError}, emitter.eventTypes())
	assert.True(t, emitter.done)
	db.ThreadsCollection.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything)
	prov.AssertNotCalled(t, "StreamChat", mock.Anything, mock.Anything)
}

// TestStream_EmptyUpstreamResponse tests that a stream yielding no content
// and no reasoning produces an error event and persists no assistant
// message.
func TestStream_EmptyUpstreamResponse(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	prov := &mocks.MockProviderClient{}

	var appended []*models.ChatMessage
	db.ThreadsCollection.On("CreateThread", mock.Anything, mock.Anything).Return(nil)
	db.ThreadsCollection.On("AppendMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			appended = append(appended, args.Get(1).(*models.ChatMessage))
		}).Return(nil)
	db.ThreadsCollection.On("ListMessages", mock.Anything, "user-1", mock.Anything).
		Return([]*models.ChatMessage{{Content: "hello"}}, nil)
	prov.On("StreamChat", mock.Anything, mock.Anything).
		Return(&mocks.ScriptedStreamReader{}, nil)

	emitter := &recordingEmitter{}
	svc := newTestService(t, db, prov)

	svc.Stream(context.Background(), &chat.Request{
		UserID:  "user-1",
		Content: "hello",
		ModelID: "openai/gpt-4o",
	}, emitter)

	types := emitter.eventTypes()
	assert.Equal(t, sse.EventError, types[len(types)-1])

	errEvt := emitter.events[len(emitter.events)-1].(*sse.ErrorEvent)
	assert.Contains(t, errEvt.Error, "no response received from the model")

	// Only the user message was persisted.
	require.Len(t, appended, 1)
	assert.Equal(t, models.RoleUser, appended[0].Role)
}

// TestStream_ForcedReasoningModel tests that forced-reasoning models ask
// upstream for reasoning, interleave reasoning before content, and persist
// a non-empty reasoning trace.
func TestStream_ForcedReasoningModel(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	prov := &mocks.MockProviderClient{}

	var persisted []*models.ChatMessage
	db.ThreadsCollection.On("CreateThread", mock.Anything, mock.Anything).Return(nil)
	db.ThreadsCollection.On("AppendMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = append(persisted, args.Get(1).(*models.ChatMessage))
		}).Return(nil)
	db.ThreadsCollection.On("ListMessages", mock.Anything, "user-1", mock.Anything).
		Return([]*models.ChatMessage{{Content: "why?"}}, nil)

	reader := &mocks.ScriptedStreamReader{Chunks: []*provider.StreamChunk{
		{Type: provider.ChunkTypeReasoning, Content: "consider "},
		{Type: provider.ChunkTypeReasoning, Content: "the question"},
		{Type: provider.ChunkTypeContent, Content: "Because."},
	}}

	var captured *provider.ChatRequest
	prov.On("StreamChat", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*provider.ChatRequest)
		}).Return(reader, nil)

	emitter := &recordingEmitter{}
	svc := newTestService(t, db, prov)

	// UseReasoning is deliberately false: forced models reason anyway.
	svc.Stream(context.Background(), &chat.Request{
		UserID:  "user-1",
		Content: "why?",
		ModelID: "deepseek/deepseek-r1",
	}, emitter)

	require.NotNil(t, captured)
	assert.True(t, captured.UseReasoning)

	assert.Equal(t, []sse.EventType{
		sse.EventThreadInfo,
		sse.EventUserMessage,
		sse.EventAIStart,
		sse.EventReasoningChunk,
		sse.EventReasoningChunk,
		sse.EventAIChunk,
		sse.EventAIComplete,
	}, emitter.eventTypes())

	require.Len(t, persisted, 2)
	assert.Equal(t, "Because.", persisted[1].Content)
	assert.Equal(t, "consider the question", persisted[1].Reasoning)
}

// TestStream_ImageOnlyMessage tests that image-only messages get placeholder
// content and the user_message event reports the image count.
func TestStream_ImageOnlyMessage(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	prov := &mocks.MockProviderClient{}

	db.ThreadsCollection.On("CreateThread", mock.Anything, mock.Anything).Return(nil)
	db.ThreadsCollection.On("AppendMessage", mock.Anything, mock.Anything).Return(nil)
	db.ThreadsCollection.On("ListMessages", mock.Anything, "user-1", mock.Anything).
		Return([]*models.ChatMessage{{Content: "[Image message]"}}, nil)
	prov.On("StreamChat", mock.Anything, mock.Anything).
		Return(&mocks.ScriptedStreamReader{Chunks: contentChunks("I see two images.")}, nil)

	emitter := &recordingEmitter{}
	svc := newTestService(t, db, prov)

	svc.Stream(context.Background(), &chat.Request{
		UserID:  "user-1",
		ModelID: "openai/gpt-4o",
		Images: []models.ImageAttachment{
			{URL: "https://example.com/a.png"},
			{URL: "https://example.com/b.png"},
		},
	}, emitter)

	userEvt := emitter.events[1].(*sse.UserMessageEvent)
	assert.Equal(t, "[Image message]", userEvt.Message.Content)
	assert.Equal(t, 2, userEvt.Message.ImageCount)
}

// TestStream_UpstreamFailureMidStream tests that a mid-stream upstream
// error surfaces as an error event and the partial response is not
// persisted.
func TestStream_UpstreamFailureMidStream(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	prov := &mocks.MockProviderClient{}

	var appended []*models.ChatMessage
	db.ThreadsCollection.On("CreateThread", mock.Anything, mock.Anything).Return(nil)
	db.ThreadsCollection.On("AppendMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			appended = append(appended, args.Get(1).(*models.ChatMessage))
		}).Return(nil)
	db.ThreadsCollection.On("ListMessages", mock.Anything, "user-1", mock.Anything).
		Return([]*models.ChatMessage{{Content: "hello"}}, nil)
	prov.On("StreamChat", mock.Anything, mock.Anything).
		Return(&mocks.ScriptedStreamReader{
			Chunks: contentChunks("partial "),
			Err:    errors.New("connection reset"),
		}, nil)

	emitter := &recordingEmitter{}
	svc := newTestService(t, db, prov)

	svc.Stream(context.Background(), &chat.Request{
		UserID:  "user-1",
		Content: "hello",
		ModelID: "openai/gpt-4o",
	}, emitter)

	types := emitter.eventTypes()
	assert.Equal(t, sse.EventError, types[len(types)-1])
	assert.True(t, emitter.done)

	require.Len(t, appended, 1)
	assert.Equal(t, models.RoleUser, appended[0].Role)
}

// TestRequest_Validate tests pre-stream request validation.
func TestRequest_Validate(t *testing.T) {
	base := chat.Request{UserID: "user-1", Content: "hi", ModelID: "openai/gpt-4o"}
	assert.NoError(t, base.Validate())

	noUser := base
	noUser.UserID = ""
	assert.Error(t, noUser.Validate())

	noModel := base
	noModel.ModelID = ""
	assert.Error(t, noModel.Validate())

	empty := base
	empty.Content = ""
	assert.Error(t, empty.Validate())

	imageOnly := base
	imageOnly.Content = ""
	imageOnly.ImageURL = "https://example.com/a.png"
	assert.NoError(t, imageOnly.Validate())
}

// TestSend_Synchronous tests the non-streaming exchange path.
func TestSend_Synchronous(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	prov := &mocks.MockProviderClient{}

	db.ThreadsCollection.On("CreateThread", mock.Anything, mock.Anything).Return(nil)
	db.ThreadsCollection.On("AppendMessage", mock.Anything, mock.Anything).Return(nil)
	db.ThreadsCollection.On("ListMessages", mock.Anything, "user-1", mock.Anything).
		Return([]*models.ChatMessage{{Content: "hello"}}, nil)
	prov.On("Chat", mock.Anything, mock.Anything).
		Return(&provider.ChatResult{Content: "Hello back"}, nil)

	svc := newTestService(t, db, prov)
	result, err := svc.Send(context.Background(), &chat.Request{
		UserID:  "user-1",
		Content: "hello",
		ModelID: "openai/gpt-4o",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ThreadID)
	assert.Equal(t, "hello", result.Message.Content)
	assert.Equal(t, "Hello back", result.AssistantResponse.Content)
	require.NotNil(t, result.AssistantResponse.Metrics)
}

// TestSend_UpstreamError tests that upstream failures map to an error.
func TestSend_UpstreamError(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	prov := &mocks.MockProviderClient{}

	db.ThreadsCollection.On("CreateThread", mock.Anything, mock.Anything).Return(nil)
	db.ThreadsCollection.On("AppendMessage", mock.Anything, mock.Anything).Return(nil)
	db.ThreadsCollection.On("ListMessages", mock.Anything, "user-1", mock.Anything).
		Return([]*models.ChatMessage{{Content: "hello"}}, nil)
	prov.On("Chat", mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream down"))

	svc := newTestService(t, db, prov)
	_, err := svc.Send(context.Background(), &chat.Request{
		UserID:  "user-1",
		Content: "hello",
		ModelID: "openai/gpt-4o",
	})
	require.Error(t, err)
}
