package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// StateCollection holds one document per shared collection.
const StateCollection = "state"

const placeholderPrefix = "REPLACE_WITH_"

// FirestoreConfig selects the Firebase project.
type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
}

// Configured reports whether the config names a real project.
func (c FirestoreConfig) Configured() bool {
	id := strings.TrimSpace(c.ProjectID)
	return id != "" && !strings.HasPrefix(id, placeholderPrefix)
}

// stateDoc stores the collection as JSON text; Firestore maps cannot hold
// the top-level arrays used by queue and gallery.
type stateDoc struct {
	JSON      string    `firestore:"json"`
	UpdatedAt time.Time `firestore:"updatedAt,serverTimestamp"`
}

// FirestoreMirror keeps the shared collections in Firestore.
type FirestoreMirror struct {
	client *firestore.Client
}

func NewFirestoreMirror(ctx context.Context, cfg FirestoreConfig) (*FirestoreMirror, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Firestore client: %w", err)
	}
	return &FirestoreMirror{client: client}, nil
}

func (m *FirestoreMirror) Name() string { return "firestore" }

func (m *FirestoreMirror) Pull(ctx context.Context) (map[string]json.RawMessage, error) {
	docs, err := m.client.Collection(StateCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(docs))
	for _, doc := range docs {
		if data, ok := decodeDoc(doc); ok {
			out[doc.Ref.ID] = data
		}
	}
	return out, nil
}

func decodeDoc(doc *firestore.DocumentSnapshot) (json.RawMessage, bool) {
	var d stateDoc
	if err := doc.DataTo(&d); err != nil || !json.Valid([]byte(d.JSON)) {
		return nil, false
	}
	return json.RawMessage(d.JSON), true
}

func (m *FirestoreMirror) Push(ctx context.Context, name string, data json.RawMessage) error {
	_, err := m.client.Collection(StateCollection).Doc(name).Set(ctx, stateDoc{JSON: string(data)})
	return err
}

func (m *FirestoreMirror) Subscribe(ctx context.Context, apply func(name string, data json.RawMessage)) error {
	it := m.client.Collection(StateCollection).Snapshots(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, iterator.Done) {
				return ctx.Err()
			}
			return err
		}
		for _, change := range snap.Changes {
			if change.Kind == firestore.DocumentRemoved {
				continue
			}
			if data, ok := decodeDoc(change.Doc); ok {
				apply(change.Doc.Ref.ID, data)
			}
		}
	}
}

func (m *FirestoreMirror) Close() error {
	return m.client.Close()
}
