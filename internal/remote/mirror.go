package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotConfigured = errors.New("remote mirror not configured")

// Mirror is a remote copy of the shared collections, keyed by collection
// name (bookings, overrides, queue, gallery).
type Mirror interface {
	Name() string
	// Pull returns every collection the remote holds.
	Pull(ctx context.Context) (map[string]json.RawMessage, error)
	Push(ctx context.Context, name string, data json.RawMessage) error
	// Subscribe calls apply for each remote change until ctx is done or the
	// subscription fails.
	Subscribe(ctx context.Context, apply func(name string, data json.RawMessage)) error
	Close() error
}

// Applier is the local store the mirror feeds.
type Applier interface {
	ApplyRemote(ctx context.Context, name string, data json.RawMessage) error
}

// Modes for Config.Mode.
const (
	ModeNone      = "none"
	ModeHTTP      = "http"
	ModeFirestore = "firestore"
)

// Config selects the mirror implementation.
type Config struct {
	Mode      string
	HTTP      HTTPConfig
	Firestore FirestoreConfig
}

// NewMirror builds the configured mirror. ModeNone returns ErrNotConfigured.
func NewMirror(ctx context.Context, cfg Config) (Mirror, error) {
	switch cfg.Mode {
	case "", ModeNone:
		return nil, ErrNotConfigured
	case ModeHTTP:
		return NewHTTPMirror(cfg.HTTP)
	case ModeFirestore:
		return NewFirestoreMirror(ctx, cfg.Firestore)
	}
	return nil, fmt.Errorf("remote: unknown mode %q", cfg.Mode)
}
