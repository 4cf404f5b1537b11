package models

import "time"

// UserApp is a user-defined bundle of a name plus system prompt.
type UserApp struct {
	Name         string `json:"name" bson:"name"`
	SystemPrompt string `json:"systemPrompt" bson:"systemPrompt"`
}

// UserPreferences is a per-user document created lazily on first write.
// Updates use partial-merge semantics: unspecified fields keep their prior
// value.
type UserPreferences struct {
	UserID            string    `json:"userId" bson:"_id"`
	PinnedModels      []string  `json:"pinnedModels" bson:"pinnedModels"`
	Theme             string    `json:"theme,omitempty" bson:"theme,omitempty"`
	LastSelectedModel string    `json:"lastSelectedModel,omitempty" bson:"lastSelectedModel,omitempty"`
	Apps              []UserApp `json:"apps,omitempty" bson:"apps,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
}

// DefaultPreferences returns the preferences document for a user with no
// stored preferences yet.
func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:       userID,
		PinnedModels: []string{},
		Theme:        "system",
	}
}

// PinModel moves modelID to the front of the pinned list, most recently
// pinned first.
func (p *UserPreferences) PinModel(modelID string) {
	pinned := make([]string, 0, len(p.PinnedModels)+1)
	pinned = append(pinned, modelID)
	for _, id := range p.PinnedModels {
		if id != modelID {
			pinned = append(pinned, id)
		}
	}
	p.PinnedModels = pinned
}

// UnpinModel removes modelID from the pinned list.
func (p *UserPreferences) UnpinModel(modelID string) {
	pinned := p.PinnedModels[:0]
	for _, id := range p.PinnedModels {
		if id != modelID {
			pinned = append(pinned, id)
		}
	}
	p.PinnedModels = pinned
}
