package kvstore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const fileExt = ".json"

// File stores each key as <dir>/<key>.json. Writes go through a temp file
// and rename. Watch polls the directory for writes by other processes.
type File struct {
	dir      string
	interval time.Duration

	mu   sync.Mutex
	seen map[string][]byte
}

// NewFile creates the directory if needed. interval is the watch poll period.
func NewFile(dir string, interval time.Duration) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("kvstore: create dir: %w", err)
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &File{dir: dir, interval: interval, seen: make(map[string][]byte)}, nil
}

func (f *File) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("kvstore: invalid key %q", key)
	}
	return filepath.Join(f.dir, key+fileExt), nil
}

func (f *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, "."+key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	f.seen[key] = append([]byte(nil), value...)
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	delete(f.seen, key)
	return nil
}

func (f *File) Close() error { return nil }

// Watch reports keys whose file content differs from what this store last
// read or wrote. The first poll only records the current contents.
func (f *File) Watch(ctx context.Context) (<-chan Change, error) {
	out := make(chan Change, 16)
	if _, err := f.scan(); err != nil {
		return nil, err
	}

	go func() {
		defer close(out)
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				changes, err := f.scan()
				if err != nil {
					log.Warn().Err(err).Str("dir", f.dir).Msg("kvstore poll failed")
					continue
				}
				for _, c := range changes {
					select {
					case out <- c:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out, nil
}

// scan holds the lock while reading so a concurrent Set is never seen half-way.
func (f *File) scan() ([]Change, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	current := make(map[string][]byte, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(f.dir, name))
		if err != nil {
			continue
		}
		current[strings.TrimSuffix(name, fileExt)] = data
	}

	var changes []Change
	for key, data := range current {
		if prev, ok := f.seen[key]; !ok || !bytes.Equal(prev, data) {
			changes = append(changes, Change{Key: key, Value: data})
			f.seen[key] = data
		}
	}
	for key := range f.seen {
		if _, ok := current[key]; !ok {
			changes = append(changes, Change{Key: key, Deleted: true})
			delete(f.seen, key)
		}
	}
	return changes, nil
}
