package storage

import (
	"context"
	"fmt"
	"io"
)

// Storage is a blob store for gallery images.
type Storage interface {
	// Put stores the object at key, replacing any existing one.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes the object. A missing object is not an error.
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// URL is the public address of key.
	URL(key string) string
}

// Config selects and configures the backend.
type Config struct {
	Backend string // local or s3

	LocalDir string
	BaseURL  string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// New builds the configured backend.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStorage(cfg.LocalDir, cfg.BaseURL)
	case "s3":
		return NewS3Storage(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
