// Package kvstore is the device-local key/value persistence behind the app
// state. Values are opaque JSON documents, one per key.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrClosed = errors.New("kvstore: closed")

// Store persists whole values per key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Change is a write made by another process sharing the store.
type Change struct {
	Key     string
	Value   []byte
	Deleted bool
}

// Watcher is implemented by stores that can report writes made elsewhere.
// Writes made through the same Store are not reported back to it.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Change, error)
}

// Config selects a backend for Open.
type Config struct {
	Backend      string // memory | file | redis
	Dir          string
	PollInterval time.Duration
	Redis        *redis.Client
	RedisHash    string
}

// Open builds the configured backend. The returned Watcher is nil for the
// memory backend.
func Open(cfg Config) (Store, Watcher, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemory(), nil, nil
	case "", "file":
		interval := cfg.PollInterval
		if interval <= 0 {
			interval = time.Second
		}
		f, err := NewFile(cfg.Dir, interval)
		if err != nil {
			return nil, nil, err
		}
		return f, f, nil
	case "redis":
		if cfg.Redis == nil {
			return nil, nil, errors.New("kvstore: redis backend needs a client")
		}
		hash := cfg.RedisHash
		if hash == "" {
			hash = DefaultRedisHash
		}
		r := NewRedis(cfg.Redis, hash)
		return r, r, nil
	}
	return nil, nil, fmt.Errorf("kvstore: unknown backend %q", cfg.Backend)
}
