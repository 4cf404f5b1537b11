// Package mongodb provides the preferences collection implementation.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/streamchat/chat-service/internal/core/docdb"
	"github.com/streamchat/chat-service/internal/domain/models"
)

// PreferencesCollectionName is the name of the preferences collection.
const PreferencesCollectionName = "preferences"

// PreferencesCollection implements the docdb.PreferencesCollection
// interface for MongoDB.
type PreferencesCollection struct {
	collection *mongo.Collection
}

// NewPreferencesCollection creates a new preferences collection wrapper.
func NewPreferencesCollection(db *mongo.Database) *PreferencesCollection {
	return &PreferencesCollection{
		collection: db.Collection(PreferencesCollectionName),
	}
}

// Get retrieves a user's preferences, returning defaults when the user has
// never written preferences.
func (c *PreferencesCollection) Get(ctx context.Context, userID string) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	err := c.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&prefs)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.DefaultPreferences(userID), nil
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return &prefs, nil
}

// Merge applies a partial update with upsert semantics and returns the
// merged document.
func (c *PreferencesCollection) Merge(ctx context.Context, userID string, patch *docdb.PreferencesPatch) (*models.UserPreferences, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.PinnedModels != nil {
		set["pinnedModels"] = *patch.PinnedModels
	}
	if patch.Theme != nil {
		set["theme"] = *patch.Theme
	}
	if patch.LastSelectedModel != nil {
		set["lastSelectedModel"] = *patch.LastSelectedModel
	}
	if patch.Apps != nil {
		set["apps"] = *patch.Apps
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var merged models.UserPreferences
	err := c.collection.FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": set}, opts).Decode(&merged)
	if err != nil {
		return nil, fmt.Errorf("failed to merge preferences: %w", err)
	}
	return &merged, nil
}
