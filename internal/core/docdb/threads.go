// Package docdb provides the threads collection interface.
package docdb

import (
	"context"

	"github.com/streamchat/chat-service/internal/domain/models"
)

// ListThreadsOptions contains options for listing threads.
type ListThreadsOptions struct {
	UserID  string
	Limit   int64
	Skip    int64
	OrderBy SortOrder // Order by updatedAt
}

// ThreadsCollection defines the interface for thread and message operations.
// All operations are scoped by user ID for ownership isolation.
type ThreadsCollection interface {
	// CreateThread inserts a new thread.
	CreateThread(ctx context.Context, thread *models.ChatThread) error

	// GetThread retrieves a thread by ID without its messages.
	// Returns nil if the thread does not exist or belongs to another user.
	GetThread(ctx context.Context, userID, threadID string) (*models.ChatThread, error)

	// GetThreadWithMessages retrieves a thread with its messages in
	// chronological order.
	GetThreadWithMessages(ctx context.Context, userID, threadID string) (*models.ChatThread, error)

	// ListThreads lists a user's threads, most recently updated first by
	// default.
	ListThreads(ctx context.Context, opts *ListThreadsOptions) ([]*models.ChatThread, error)

	// ListMessages lists the messages of a thread in chronological order.
	ListMessages(ctx context.Context, userID, threadID string) ([]*models.ChatMessage, error)

	// AppendMessage inserts a message and bumps the thread's updatedAt as
	// one logical write.
	AppendMessage(ctx context.Context, message *models.ChatMessage) error

	// DeleteThread removes a thread and cascades to its messages.
	// Returns the number of deleted messages.
	DeleteThread(ctx context.Context, userID, threadID string) (int64, error)

	// EnsureIndexes creates necessary indexes for the collection.
	EnsureIndexes(ctx context.Context) error
}
