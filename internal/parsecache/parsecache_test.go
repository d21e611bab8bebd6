package parsecache

import (
	"testing"

	"github.com/rlefko/semindex/internal/model"
)

func TestSetThenGetRoundTrips(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, 100)

	hash := ComputeContentHash("package main")
	result := &model.ParseResult{FilePath: "main.go", FileHash: hash}

	if err := c.Set(hash, result); err != nil {
		t.Fatal(err)
	}

	got := c.Get(hash)
	if got == nil {
		t.Fatal("expected a cache hit")
	}
	if got.FilePath != "main.go" {
		t.Errorf("expected round-tripped file path, got %q", got.FilePath)
	}
}

func TestGetMissReturnsNil(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, 100)
	if got := c.Get("nonexistent"); got != nil {
		t.Error("expected nil for an unknown hash")
	}
}

func TestEvictsOldestQuarterAtCapacity(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, 4)

	for i := 0; i < 4; i++ {
		hash := ComputeContentHash(string(rune('a' + i)))
		c.Set(hash, &model.ParseResult{FilePath: hash})
	}
	if c.Len() != 4 {
		t.Fatalf("expected 4 entries before eviction trigger, got %d", c.Len())
	}

	// Fifth insert should trigger eviction of the single oldest entry
	// (4/4 == 1, since len(index) reached maxEntries at insert time).
	hash := ComputeContentHash("trigger")
	c.Set(hash, &model.ParseResult{FilePath: hash})

	if c.Len() > 4 {
		t.Errorf("expected eviction to keep size bounded, got %d entries", c.Len())
	}
}

func TestClearRemovesAllEntries(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, 100)
	hash := ComputeContentHash("x")
	c.Set(hash, &model.ParseResult{FilePath: "x.go"})

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected 0 entries after Clear, got %d", c.Len())
	}
	if got := c.Get(hash); got != nil {
		t.Error("expected cleared entry to be gone")
	}
}

func TestComputeContentHashDeterministic(t *testing.T) {
	if ComputeContentHash("abc") != ComputeContentHash("abc") {
		t.Error("expected stable hash for identical content")
	}
	if ComputeContentHash("abc") == ComputeContentHash("abd") {
		t.Error("expected different content to hash differently")
	}
}
