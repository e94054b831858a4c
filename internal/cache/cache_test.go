package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
)

var testKey = digest.FromString("build-context")

func testEntry() Entry {
	return Entry{
		Image:     digest.FromString("pushed-image"),
		Tag:       "example/costwatch:latest",
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLookupMiss(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "buildcache.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := c.Lookup(testKey); ok {
		t.Fatal("lookup on empty cache returned an entry")
	}
}

func TestStoreAndLookup(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "buildcache.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.Store(testKey, testEntry()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e, ok := c.Lookup(testKey)
	if !ok {
		t.Fatal("stored entry not found")
	}
	if e.Image != testEntry().Image {
		t.Fatalf("image = %v, want %v", e.Image, testEntry().Image)
	}
	if e.Tag != "example/costwatch:latest" {
		t.Fatalf("tag = %q", e.Tag)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildcache.json")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Store(testKey, testEntry()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e, ok := reopened.Lookup(testKey)
	if !ok {
		t.Fatal("entry lost across reopen")
	}
	if e.Image != testEntry().Image {
		t.Fatalf("image = %v, want %v", e.Image, testEntry().Image)
	}
	if !e.CreatedAt.Equal(testEntry().CreatedAt) {
		t.Fatalf("created at = %v, want %v", e.CreatedAt, testEntry().CreatedAt)
	}
}

func TestInvalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildcache.json")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Store(testKey, testEntry()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.Invalidate(testKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Lookup(testKey); ok {
		t.Fatal("entry still present after invalidation")
	}

	// Removal must survive a reopen too.
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := reopened.Lookup(testKey); ok {
		t.Fatal("invalidated entry resurrected after reopen")
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildcache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Open(path)
	if err != nil {
		t.Fatalf("corrupt cache file must not fail open: %v", err)
	}
	if _, ok := c.Lookup(testKey); ok {
		t.Fatal("lookup on corrupt cache returned an entry")
	}

	// The cache stays usable.
	if err := c.Store(testKey, testEntry()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnknownVersionStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildcache.json")
	if err := os.WriteFile(path, []byte(`{"version":"99","entries":{}}`), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Lookup(testKey); ok {
		t.Fatal("entry loaded from incompatible cache version")
	}
}

func TestCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "buildcache.json")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Store(testKey, testEntry()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cache file missing: %v", err)
	}
}
