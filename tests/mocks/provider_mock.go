package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/streamchat/chat-service/internal/services/provider"
)

// MockProviderClient is a mock implementation of provider.Client.
type MockProviderClient struct {
	mock.Mock
}

// Chat generates a complete response.
func (m *MockProviderClient) Chat(ctx context.Context, req *provider.ChatRequest) (*provider.ChatResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ChatResult), args.Error(1)
}

// StreamChat opens a streamed response.
func (m *MockProviderClient) StreamChat(ctx context.Context, req *provider.ChatRequest) (provider.StreamReader, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(provider.StreamReader), args.Error(1)
}

// Close releases client resources.
func (m *MockProviderClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

// ScriptedStreamReader replays a fixed chunk sequence, then an optional
// terminal error, then io.EOF. It implements provider.StreamReader.
type ScriptedStreamReader struct {
	Chunks []*provider.StreamChunk
	Err    error

	pos    int
	closed bool
}

// Read returns the next scripted chunk.
func (r *ScriptedStreamReader) Read() (*provider.StreamChunk, error) {
	if r.pos < len(r.Chunks) {
		chunk := r.Chunks[r.pos]
		r.pos++
		return chunk, nil
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return nil, io.EOF
}

// Close marks the reader closed.
func (r *ScriptedStreamReader) Close() error {
	r.closed = true
	return nil
}

// Closed reports whether Close was called.
func (r *ScriptedStreamReader) Closed() bool {
	return r.closed
}
