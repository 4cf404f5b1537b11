// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/streamchat/chat-service/internal/core/docdb"
	"github.com/streamchat/chat-service/internal/domain/models"
)

// MockThreadsCollection is a mock implementation of docdb.ThreadsCollection.
type MockThreadsCollection struct {
	mock.Mock
}

// CreateThread inserts a new thread.
func (m *MockThreadsCollection) CreateThread(ctx context.Context, thread *models.ChatThread) error {
	args := m.Called(ctx, thread)
	return args.Error(0)
}

// GetThread retrieves a thread by ID.
func (m *MockThreadsCollection) GetThread(ctx context.Context, userID, threadID string) (*models.ChatThread, error) {
	args := m.Called(ctx, userID, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatThread), args.Error(1)
}

// GetThreadWithMessages retrieves a thread with its messages.
func (m *MockThreadsCollection) GetThreadWithMessages(ctx context.Context, userID, threadID string) (*models.ChatThread, error) {
	args := m.Called(ctx, userID, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatThread), args.Error(1)
}

// ListThreads lists a user's threads.
func (m *MockThreadsCollection) ListThreads(ctx context.Context, opts *docdb.ListThreadsOptions) ([]*models.ChatThread, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ChatThread), args.Error(1)
}

// ListMessages lists the messages of a thread.
func (m *MockThreadsCollection) ListMessages(ctx context.Context, userID, threadID string) ([]*models.ChatMessage, error) {
	args := m.Called(ctx, userID, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ChatMessage), args.Error(1)
}

// AppendMessage inserts a message and bumps the thread's updatedAt.
func (m *MockThreadsCollection) AppendMessage(ctx context.Context, message *models.ChatMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// DeleteThread removes a thread and its messages.
func (m *MockThreadsCollection) DeleteThread(ctx context.Context, userID, threadID string) (int64, error) {
	args := m.Called(ctx, userID, threadID)
	return args.Get(0).(int64), args.Error(1)
}

// EnsureIndexes creates necessary indexes.
func (m *MockThreadsCollection) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPreferencesCollection is a mock implementation of docdb.PreferencesCollection.
type MockPreferencesCollection struct {
	mock.Mock
}

// Get retrieves a user's preferences.
func (m *MockPreferencesCollection) Get(ctx context.Context, userID string) (*models.UserPreferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPreferences), args.Error(1)
}

// Merge applies a partial update.
func (m *MockPreferencesCollection) Merge(ctx context.Context, userID string, patch *docdb.PreferencesPatch) (*models.UserPreferences, error) {
	args := m.Called(ctx, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPreferences), args.Error(1)
}

// MockDocDBClient is a mock implementation of docdb.Client.
type MockDocDBClient struct {
	mock.Mock
	ThreadsCollection     *MockThreadsCollection
	PreferencesCollection *MockPreferencesCollection
}

// NewMockDocDBClient creates a client with fresh collection mocks.
func NewMockDocDBClient() *MockDocDBClient {
	return &MockDocDBClient{
		ThreadsCollection:     &MockThreadsCollection{},
		PreferencesCollection: &MockPreferencesCollection{},
	}
}

// Threads returns the threads collection mock.
func (m *MockDocDBClient) Threads() docdb.ThreadsCollection {
	return m.ThreadsCollection
}

// Preferences returns the preferences collection mock.
func (m *MockDocDBClient) Preferences() docdb.PreferencesCollection {
	return m.PreferencesCollection
}

// Ping checks the database connection.
func (m *MockDocDBClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// EnsureIndexes creates necessary indexes.
func (m *MockDocDBClient) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close closes the database connection.
func (m *MockDocDBClient) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
