// Package docdb provides the user preferences collection interface.
package docdb

import (
	"context"

	"github.com/streamchat/chat-service/internal/domain/models"
)

// PreferencesPatch carries a partial preferences update. Nil fields keep
// their stored value.
type PreferencesPatch struct {
	PinnedModels      *[]string
	Theme             *string
	LastSelectedModel *string
	Apps              *[]models.UserApp
}

// PreferencesCollection defines the interface for preference operations.
type PreferencesCollection interface {
	// Get retrieves a user's preferences. Returns defaults when the user
	// has never written preferences.
	Get(ctx context.Context, userID string) (*models.UserPreferences, error)

	// Merge applies a partial update, creating the document on first write,
	// and returns the merged result.
	Merge(ctx context.Context, userID string, patch *PreferencesPatch) (*models.UserPreferences, error)
}
