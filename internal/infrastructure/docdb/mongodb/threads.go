// Package mongodb provides the threads collection implementation.
package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/streamchat/chat-service/internal/core/docdb"
	"github.com/streamchat/chat-service/internal/domain/models"
)

const (
	// ThreadsCollectionName is the name of the threads collection.
	ThreadsCollectionName = "threads"
	// MessagesCollectionName is the name of the messages collection.
	MessagesCollectionName = "messages"
)

// ThreadsCollection implements the docdb.ThreadsCollection interface for
// MongoDB.
type ThreadsCollection struct {
	client   *mongo.Client
	threads  *mongo.Collection
	messages *mongo.Collection
}

// NewThreadsCollection creates a new threads collection wrapper.
func NewThreadsCollection(client *mongo.Client, db *mongo.Database) *ThreadsCollection {
	return &ThreadsCollection{
		client:   client,
		threads:  db.Collection(ThreadsCollectionName),
		messages: db.Collection(MessagesCollectionName),
	}
}

// CreateThread inserts a new thread.
func (c *ThreadsCollection) CreateThread(ctx context.Context, thread *models.ChatThread) error {
	if thread.ID == "" {
		return fmt.Errorf("thread ID is required")
	}
	if thread.UserID == "" {
		return fmt.Errorf("thread user ID is required")
	}

	if _, err := c.threads.InsertOne(ctx, thread); err != nil {
		return fmt.Errorf("failed to insert thread: %w", err)
	}
	return nil
}

// GetThread retrieves a thread by ID without its messages.
func (c *ThreadsCollection) GetThread(ctx context.Context, userID, threadID string) (*models.ChatThread, error) {
	var thread models.ChatThread
	err := c.threads.FindOne(ctx, bson.M{"_id": threadID, "userId": userID}).Decode(&thread)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return &thread, nil
}

// GetThreadWithMessages retrieves a thread with its messages in
// chronological order.
func (c *ThreadsCollection) GetThreadWithMessages(ctx context.Context, userID, threadID string) (*models.ChatThread, error) {
	thread, err := c.GetThread(ctx, userID, threadID)
	if err != nil || thread == nil {
		return thread, err
	}

	messages, err := c.ListMessages(ctx, userID, threadID)
	if err != nil {
		return nil, err
	}
	thread.Messages = messages
	return thread, nil
}

// ListThreads lists a user's threads, most recently updated first by default.
func (c *ThreadsCollection) ListThreads(ctx context.Context, opts *docdb.ListThreadsOptions) ([]*models.ChatThread, error) {
	order := -1
	if opts.OrderBy == docdb.SortOrderAsc {
		order = 1
	}

	findOpts := options.Find().SetSort(bson.M{"updatedAt": order})
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}

	cursor, err := c.threads.Find(ctx, bson.M{"userId": opts.UserID}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer cursor.Close(ctx)

	var threads []*models.ChatThread
	if err := cursor.All(ctx, &threads); err != nil {
		return nil, fmt.Errorf("failed to decode threads: %w", err)
	}
	return threads, nil
}

// ListMessages lists the messages of a thread in chronological order.
func (c *ThreadsCollection) ListMessages(ctx context.Context, userID, threadID string) ([]*models.ChatMessage, error) {
	findOpts := options.Find().SetSort(bson.M{"timestamp": 1})

	cursor, err := c.messages.Find(ctx, bson.M{"threadId": threadID, "userId": userID}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}

// AppendMessage inserts a message and bumps the thread's updatedAt in one
// transaction. Standalone servers without replica sets do not support
// transactions; those fall back to sequential writes.
func (c *ThreadsCollection) AppendMessage(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == "" {
		return fmt.Errorf("message ID is required")
	}
	if message.ThreadID == "" {
		return fmt.Errorf("message thread ID is required")
	}

	session, err := c.client.StartSession()
	if err != nil {
		return c.appendSequential(ctx, message)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, c.appendSequential(sc, message)
	})
	if err != nil && isTransactionUnsupported(err) {
		return c.appendSequential(ctx, message)
	}
	return err
}

// appendSequential performs the two writes of AppendMessage without a
// surrounding transaction.
func (c *ThreadsCollection) appendSequential(ctx context.Context, message *models.ChatMessage) error {
	if _, err := c.messages.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	result, err := c.threads.UpdateOne(ctx,
		bson.M{"_id": message.ThreadID, "userId": message.UserID},
		bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update thread timestamp: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("thread %s not found", message.ThreadID)
	}
	return nil
}

// DeleteThread removes a thread and cascades to its messages.
func (c *ThreadsCollection) DeleteThread(ctx context.Context, userID, threadID string) (int64, error) {
	result, err := c.threads.DeleteOne(ctx, bson.M{"_id": threadID, "userId": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete thread: %w", err)
	}
	if result.DeletedCount == 0 {
		return 0, nil
	}

	deleted, err := c.messages.DeleteMany(ctx, bson.M{"threadId": threadID, "userId": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete thread messages: %w", err)
	}
	return deleted.DeletedCount, nil
}

// EnsureIndexes creates necessary indexes for the collection.
func (c *ThreadsCollection) EnsureIndexes(ctx context.Context) error {
	threadIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}}},
	}
	if _, err := c.threads.Indexes().CreateMany(ctx, threadIndexes); err != nil {
		return fmt.Errorf("failed to create thread indexes: %w", err)
	}

	messageIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "threadId", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	}
	if _, err := c.messages.Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}
	return nil
}

// isTransactionUnsupported reports whether the server rejected the
// transaction because it runs without a replica set.
func isTransactionUnsupported(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Transaction numbers are only allowed") ||
		strings.Contains(msg, "IllegalOperation")
}
