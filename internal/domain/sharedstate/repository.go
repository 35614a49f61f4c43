package sharedstate

import (
	"context"
	"encoding/json"
)

// Repository persists the shared state document.
type Repository interface {
	// Ensure creates the backing storage with defaults when missing.
	Ensure(ctx context.Context) error
	// Load returns the stored document, without defaults applied.
	Load(ctx context.Context) (Document, error)
	// Save replaces one key.
	Save(ctx context.Context, key string, value json.RawMessage) error
}
