// Package docdb defines the document database client interface.
package docdb

import "context"

// Client is the top-level document database client.
type Client interface {
	// Threads returns the threads collection.
	Threads() ThreadsCollection

	// Preferences returns the user preferences collection.
	Preferences() PreferencesCollection

	// Ping checks if the database connection is alive.
	Ping(ctx context.Context) error

	// EnsureIndexes creates necessary indexes for all collections.
	EnsureIndexes(ctx context.Context) error

	// Close closes the database connection.
	Close(ctx context.Context) error
}
