// Package diskcache shadows upstream API responses on disk so repeated runs
// do not hammer the wiki. Entries are plain JSON files with an age-based
// staleness policy.
package diskcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrMiss is returned when an entry is absent or older than the allowed age.
var ErrMiss = errors.New("cache miss")

// Store is a directory of JSON cache entries.
type Store struct {
	dir string
}

// New creates the cache directory if needed and returns a store rooted at it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the on-disk location of the named entry.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Load decodes the named entry into v if it exists and is younger than
// maxAge. Returns ErrMiss otherwise.
func (s *Store) Load(name string, maxAge time.Duration, v any) error {
	info, err := os.Stat(s.Path(name))
	if err != nil {
		return ErrMiss
	}
	if time.Since(info.ModTime()) >= maxAge {
		return ErrMiss
	}
	return s.LoadAny(name, v)
}

// LoadAny decodes the named entry into v regardless of its age. Returns
// ErrMiss when the entry does not exist. Used as a stale fallback when the
// remote source is unreachable.
func (s *Store) LoadAny(name string, v any) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrMiss
		}
		return fmt.Errorf("failed to read cache entry %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode cache entry %s: %w", name, err)
	}
	return nil
}

// Save encodes v as indented JSON and writes it as the named entry.
func (s *Store) Save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", name, err)
	}
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", name, err)
	}
	return nil
}
