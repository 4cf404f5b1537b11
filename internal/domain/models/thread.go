package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultThreadTitle is used when a new thread starts with an
	// image-only message, leaving nothing to derive a title from.
	DefaultThreadTitle = "New conversation"

	// threadTitleMaxLen bounds titles derived from the first message.
	threadTitleMaxLen = 50
)

// ChatThread is a persisted conversation owned by a single user.
// Messages live in their own collection keyed by ThreadID; the Messages
// field is populated only when a thread is loaded with its history.
type ChatThread struct {
	ID        string         `json:"id" bson:"_id"`
	UserID    string         `json:"userId" bson:"userId"`
	Title     string         `json:"title" bson:"title"`
	Messages  []*ChatMessage `json:"messages,omitempty" bson:"-"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// NewThread creates a thread titled from the first message content.
func NewThread(userID, firstMessage string) *ChatThread {
	now := time.Now().UTC()
	return &ChatThread{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     TitleFromContent(firstMessage),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TitleFromContent derives a thread title by truncating the first message.
// Empty content (image-only messages) falls back to DefaultThreadTitle.
func TitleFromContent(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return DefaultThreadTitle
	}
	runes := []rune(content)
	if len(runes) <= threadTitleMaxLen {
		return content
	}
	return strings.TrimSpace(string(runes[:threadTitleMaxLen])) + "..."
}
