// Package sse_test provides tests for the SSE wire format.
package sse_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamchat/chat-service/internal/api/sse"
)

// TestNewWriter_SetsStreamingHeaders tests the SSE response headers.
func TestNewWriter_SetsStreamingHeaders(t *testing.T) {
	rec := httptest.NewRecorder()

	_, err := sse.NewWriter(rec)
	require.NoError(t, err)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
}

// TestWriter_EmitFraming tests that events are framed as data lines with a
// blank-line terminator and the type inside the JSON payload.
func TestWriter_EmitFraming(t *testing.T) {
	rec := httptest.NewRecorder()
	writer, err := sse.NewWriter(rec)
	require.NoError(t, err)

	require.NoError(t, writer.Emit(sse.NewThreadInfoEvent("thread-123")))

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "data: "))
	require.True(t, strings.HasSuffix(body, "\n\n"))
	// No event: lines; the frame is data-only.
	assert.NotContains(t, body, "event:")

	payload := strings.TrimSuffix(strings.TrimPrefix(body, "data: "), "\n\n")
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(t, "thread_info", decoded["type"])
	assert.Equal(t, "thread-123", decoded["threadId"])
}

// TestWriter_Done tests the stream terminator.
func TestWriter_Done(t *testing.T) {
	rec := httptest.NewRecorder()
	writer, err := sse.NewWriter(rec)
	require.NoError(t, err)

	require.NoError(t, writer.Emit(sse.NewAIStartEvent()))
	require.NoError(t, writer.Done())

	assert.True(t, strings.HasSuffix(rec.Body.String(), "data: [DONE]\n\n"))
}

// TestWriter_MultipleFrames tests frame ordering and separation.
func TestWriter_MultipleFrames(t *testing.T) {
	rec := httptest.NewRecorder()
	writer, err := sse.NewWriter(rec)
	require.NoError(t, err)

	require.NoError(t, writer.Emit(sse.NewAIChunkEvent("Hel", "Hel", nil)))
	require.NoError(t, writer.Emit(sse.NewAIChunkEvent("lo", "Hello", nil)))
	require.NoError(t, writer.Done())

	frames := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n\n"), "\n\n")
	require.Len(t, frames, 3)

	var first, second sse.AIChunkEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[0], "data: ")), &first))
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[1], "data: ")), &second))
	assert.Equal(t, "Hel", first.Content)
	assert.Equal(t, "Hello", second.FullContent)
	assert.Equal(t, "data: [DONE]", frames[2])
}
