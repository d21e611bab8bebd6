// Package hashcache implements a two-tier (mtime+size, then content hash)
// file change cache persisted as a single JSON document per collection.
package hashcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const hashPrefixLen = 16

// entry is the cached fingerprint for one file.
type entry struct {
	Hash      string  `json:"hash"`
	Mtime     float64 `json:"mtime"`
	Size      int64   `json:"size"`
	IndexedAt float64 `json:"indexed_at"`
}

// document is the on-disk shape, matching the external JSON contract.
type document struct {
	Collection  string           `json:"collection"`
	ProjectPath string           `json:"project_path"`
	UpdatedAt   float64          `json:"updated_at"`
	Files       map[string]entry `json:"files"`
}

// Stats summarizes cache activity for the current process lifetime.
type Stats struct {
	CachedFiles    int     `json:"cached_files"`
	FilesChecked   int     `json:"files_checked"`
	FilesChanged   int     `json:"files_changed"`
	FilesUnchanged int     `json:"files_unchanged"`
	HitRatio       float64 `json:"hit_ratio"`
	Collection     string  `json:"collection"`
}

// Cache tracks per-file content hashes to skip unchanged files across runs.
// It is safe for concurrent use: a single mutex guards the whole cache,
// which is adequate at the expected per-project file-count scale.
type Cache struct {
	mu          sync.Mutex
	projectPath string
	collection  string
	cacheFile   string
	files       map[string]entry

	checked   int
	changed   int
	unchanged int
}

// New constructs a Cache rooted at projectPath and loads any existing
// on-disk state for collection. Load errors are non-fatal: the cache starts
// empty, forcing a full re-index.
func New(projectPath, collection string) *Cache {
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		abs = projectPath
	}
	c := &Cache{
		projectPath: abs,
		collection:  collection,
		cacheFile:   filepath.Join(abs, ".index_cache", collection+"_file_hashes.json"),
		files:       map[string]entry{},
	}
	c.load()
	return c
}

func (c *Cache) load() {
	data, err := os.ReadFile(c.cacheFile)
	if err != nil {
		return
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return
	}
	if doc.Files != nil {
		c.files = doc.Files
	}
}

// relPath resolves path to a project-relative, forward-slash string.
func (c *Cache) relPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(c.projectPath, abs)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// ComputeHash streams path through SHA256 in 64 KiB blocks and returns the
// first 16 hex characters of the digest. Returns "" if the file cannot be
// read.
func ComputeHash(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, 64*1024)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return ""
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:hashPrefixLen]
}

// HasChanged reports whether path has changed since it was last recorded,
// using the mtime+size fast path before falling back to a content hash.
// Files not previously seen are reported as changed. If the fast path is
// ambiguous but the content hash still matches, the mtime/size tuple is
// silently repaired so the next check is fast again.
func (c *Cache) HasChanged(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked++

	rel := c.relPath(path)
	cached, ok := c.files[rel]
	if !ok {
		c.changed++
		return true
	}

	info, err := os.Stat(path)
	if err != nil {
		c.changed++
		return true
	}
	mtime := float64(info.ModTime().UnixNano()) / 1e9
	size := info.Size()

	if cached.Mtime == mtime && cached.Size == size {
		c.unchanged++
		return false
	}

	currentHash := ComputeHash(path)
	if currentHash != "" && currentHash == cached.Hash {
		cached.Mtime = mtime
		cached.Size = size
		c.files[rel] = cached
		c.unchanged++
		return false
	}

	c.changed++
	return true
}

// GetChangedFiles filters paths down to those HasChanged reports true for.
func (c *Cache) GetChangedFiles(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if c.HasChanged(p) {
			out = append(out, p)
		}
	}
	return out
}

// Update records the current hash/mtime/size for path after a successful
// (re-)index. It does not flush to disk; call Flush or UpdateBatch for that.
func (c *Cache) Update(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateLocked(path)
}

func (c *Cache) updateLocked(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	rel := c.relPath(path)
	c.files[rel] = entry{
		Hash:      ComputeHash(path),
		Mtime:     float64(info.ModTime().UnixNano()) / 1e9,
		Size:      info.Size(),
		IndexedAt: float64(time.Now().UnixNano()) / 1e9,
	}
}

// UpdateBatch updates every path and flushes the cache to disk once.
func (c *Cache) UpdateBatch(paths []string) error {
	c.mu.Lock()
	for _, p := range paths {
		c.updateLocked(p)
	}
	c.mu.Unlock()
	return c.Flush()
}

// Remove drops path's cache entry, e.g. because the file was deleted.
func (c *Cache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, c.relPath(path))
}

// Clear empties the cache and flushes, forcing a full re-index on next run.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.files = map[string]entry{}
	c.mu.Unlock()
	return c.Flush()
}

// Flush persists the cache to disk as a single JSON document.
func (c *Cache) Flush() error {
	c.mu.Lock()
	doc := document{
		Collection:  c.collection,
		ProjectPath: c.projectPath,
		UpdatedAt:   float64(time.Now().UnixNano()) / 1e9,
		Files:       c.files,
	}
	c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.cacheFile), 0o755); err != nil {
		return fmt.Errorf("hashcache: creating cache dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("hashcache: marshaling cache: %w", err)
	}
	if err := os.WriteFile(c.cacheFile, data, 0o644); err != nil {
		return fmt.Errorf("hashcache: writing cache: %w", err)
	}
	return nil
}

// GetDeletedFiles returns relative paths present in the cache but absent
// from currentFiles, removing them from the cache as a side effect.
func (c *Cache) GetDeletedFiles(currentFiles []string) []string {
	current := make(map[string]struct{}, len(currentFiles))
	for _, f := range currentFiles {
		current[c.relPath(f)] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var deleted []string
	for rel := range c.files {
		if _, ok := current[rel]; !ok {
			deleted = append(deleted, rel)
			delete(c.files, rel)
		}
	}
	return deleted
}

// Stats reports cache activity counters for this process's lifetime.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var hitRatio float64
	if c.checked > 0 {
		hitRatio = float64(c.unchanged) / float64(c.checked)
	}
	return Stats{
		CachedFiles:    len(c.files),
		FilesChecked:   c.checked,
		FilesChanged:   c.changed,
		FilesUnchanged: c.unchanged,
		HitRatio:       hitRatio,
		Collection:     c.collection,
	}
}

// Len returns the number of cached file entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.files)
}
