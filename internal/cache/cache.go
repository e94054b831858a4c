// Package cache records the image digest produced for each build-context
// digest, so an unchanged context can skip the build entirely. The cache is
// a performance optimization only; losing it costs a rebuild, never a wrong
// image.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/costwatch/costwatch/internal/paths"
)

var ErrCache = errors.New("build cache operation failed")

// A recorded build result.
type Entry struct {
	Image     digest.Digest `json:"image"`      // Digest of the pushed image.
	Tag       string        `json:"tag"`        // Tag the image was pushed under.
	CreatedAt time.Time     `json:"created_at"` // When the entry was recorded.
}

// On-disk representation of the cache.
type fileData struct {
	Version string                   `json:"version"`
	Entries map[digest.Digest]Entry `json:"entries"`
}

// File format version. Bump on incompatible changes; unknown versions are
// discarded and the cache starts fresh.
const fileVersion = "1"

// File-backed build cache keyed by build-context digest.
type Cache struct {
	path    string
	mu      sync.Mutex
	entries map[digest.Digest]Entry
}

// Opens the cache file at path, creating parent directories as needed.
//
// A missing, unreadable, or incompatible file starts an empty cache rather
// than failing: the cache is not correctness-critical and a publish run
// must not abort because of it.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCache, err)
	}

	c := &Cache{
		path:    path,
		entries: make(map[digest.Digest]Entry),
	}

	if err := c.load(); err != nil {
		slog.Warn("starting with empty build cache", "path", path, "error", err)
	}

	return c, nil
}

// Returns the recorded entry for a context digest.
func (c *Cache) Lookup(key digest.Digest) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return e, ok
}

// Records an entry for a context digest and persists the cache.
func (c *Cache) Store(key digest.Digest, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = e
	return c.save()
}

// Removes the entry for a context digest and persists the cache.
//
// Used when a recorded digest no longer matches what the registry serves.
func (c *Cache) Invalidate(key digest.Digest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return c.save()
}

// Reads entries from the cache file.
func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		return err
	}
	if fd.Version != fileVersion {
		return fmt.Errorf("unsupported cache version %q", fd.Version)
	}

	c.entries = fd.Entries
	if c.entries == nil {
		c.entries = make(map[digest.Digest]Entry)
	}
	return nil
}

// Writes entries to the cache file atomically via a rename.
//
// Caller must hold the mutex.
func (c *Cache) save() error {
	data, err := json.MarshalIndent(fileData{
		Version: fileVersion,
		Entries: c.entries,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCache, err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, paths.DefaultFileMode); err != nil {
		return fmt.Errorf("%w: %w", ErrCache, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("%w: %w", ErrCache, err)
	}
	return nil
}
