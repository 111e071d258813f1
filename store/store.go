// Package store implements the local memoization store: a keyed JSON blob
// cache on disk so a run (or a re-run after a partial crash) never queries
// already-resolved catalog data twice. Records are never mutated in place;
// rebuilding a key means overwriting its file outright.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is a directory of {key}.json blobs.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates the backing directory if needed and returns the store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Sub returns a nested store under dir/name.
func (s *Store) Sub(name string) (*Store, error) {
	return New(filepath.Join(s.dir, name))
}

// Dir returns the backing directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, err := os.Stat(s.path(key))
	return err == nil
}

// Load decodes the blob at key into v. A missing or unreadable blob returns
// false so callers fall through to the origin query and re-save.
func (s *Store) Load(key string, v any) bool {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false
	}
	return true
}

// MustLoad decodes the blob at key into v, failing if it is absent. Used for
// keys an earlier pipeline stage is known to have persisted.
func (s *Store) MustLoad(key string, v any) error {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return fmt.Errorf("store: mandatory key %q: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: mandatory key %q: %w", key, err)
	}
	return nil
}

// Save encodes v and writes it to key atomically (temp file + rename), so a
// crash mid-write leaves either the old blob or the new one, never a torn mix.
func (s *Store) Save(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.path(key), data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("store: temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: rename %s: %w", path, err)
	}
	return nil
}
