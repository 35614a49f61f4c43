package sharedstate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// FileRepository keeps the document in one pretty-printed JSON file.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Ensure(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	log.Info().Str("path", r.path).Msg("creating state file")
	return r.write(Defaults())
}

// Load treats an unreadable or malformed file as empty.
func (r *FileRepository) Load(_ context.Context) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(), nil
}

func (r *FileRepository) Save(_ context.Context, key string, value json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc := Merge(r.read())
	doc[key] = value
	return r.write(doc)
}

func (r *FileRepository) read() Document {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return Document{}
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Warn().Err(err).Str("path", r.path).Msg("state file unreadable, using defaults")
		return Document{}
	}
	return doc
}

func (r *FileRepository) write(doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return os.Rename(tmp, r.path)
}
