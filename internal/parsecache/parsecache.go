// Package parsecache caches ParseResults on disk keyed by file content
// hash, with an in-memory hot-value cache layered on top to avoid repeat
// JSON decodes for content hashes requested more than once in a run.
package parsecache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/maypok86/otter"

	"github.com/rlefko/semindex/internal/model"
)

// cacheVersion is bumped whenever the serialized ParseResult shape changes,
// which invalidates all previously cached entries by moving to a new
// subdirectory.
const cacheVersion = "v1"

const hashPrefixLen = 16

// indexEntry tracks one on-disk cache file for eviction bookkeeping.
type indexEntry struct {
	path       string
	mtime      time.Time
	size       int64
	lastAccess time.Time
}

// Stats reports cache hit/miss activity.
type Stats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int     `json:"hits"`
	Misses     int     `json:"misses"`
	HitRatio   float64 `json:"hit_ratio"`
	Version    string  `json:"version"`
}

// Cache is the on-disk, content-hash-keyed ParseResult store.
type Cache struct {
	dir        string
	maxEntries int

	mu    sync.Mutex
	index map[string]*indexEntry

	hits   int
	misses int

	hot *otter.Cache[string, *model.ParseResult]
}

// New constructs a Cache rooted at baseCacheDir (typically
// "<project>/.index_cache") with maxEntries as the eviction ceiling.
func New(baseCacheDir string, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	c := &Cache{
		dir:        filepath.Join(baseCacheDir, "parse_cache", cacheVersion),
		maxEntries: maxEntries,
		index:      map[string]*indexEntry{},
	}
	os.MkdirAll(c.dir, 0o755)
	c.loadIndex()

	hot, err := otter.MustBuilder[string, *model.ParseResult](maxEntries).
		WithTTL(time.Hour).
		Build()
	if err == nil {
		c.hot = &hot
	}
	return c
}

// ComputeContentHash hashes file content (not the file's bytes on disk
// necessarily — callers may pass normalized content) to the cache key
// format: first 16 hex characters of SHA256.
func ComputeContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:hashPrefixLen]
}

func (c *Cache) loadIndex() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		hash := e.Name()[:len(e.Name())-len(".json")]
		info, err := e.Info()
		if err != nil {
			continue
		}
		c.index[hash] = &indexEntry{
			path:       filepath.Join(c.dir, e.Name()),
			mtime:      info.ModTime(),
			size:       info.Size(),
			lastAccess: info.ModTime(),
		}
	}
}

// Get returns the cached ParseResult for contentHash, or nil if absent.
func (c *Cache) Get(contentHash string) *model.ParseResult {
	if c.hot != nil {
		if v, ok := c.hot.Get(contentHash); ok {
			c.mu.Lock()
			if entry, ok := c.index[contentHash]; ok {
				entry.lastAccess = time.Now()
			}
			c.hits++
			c.mu.Unlock()
			return v
		}
	}

	c.mu.Lock()
	entry, ok := c.index[contentHash]
	if !ok {
		c.misses++
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	data, err := os.ReadFile(entry.path)
	if err != nil {
		c.mu.Lock()
		delete(c.index, contentHash)
		c.misses++
		c.mu.Unlock()
		return nil
	}

	var result model.ParseResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.mu.Lock()
		delete(c.index, contentHash)
		c.misses++
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	entry.lastAccess = time.Now()
	c.hits++
	c.mu.Unlock()

	if c.hot != nil {
		c.hot.Set(contentHash, &result)
	}
	return &result
}

// Set stores result under contentHash, evicting the oldest 25% of entries
// first if the cache is at capacity.
func (c *Cache) Set(contentHash string, result *model.ParseResult) error {
	c.mu.Lock()
	c.maybeEvictLocked()
	c.mu.Unlock()

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	path := filepath.Join(c.dir, contentHash+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	info, err := os.Stat(path)
	now := time.Now()
	size := int64(len(data))
	if err == nil {
		size = info.Size()
	}

	c.mu.Lock()
	c.index[contentHash] = &indexEntry{path: path, mtime: now, size: size, lastAccess: now}
	c.mu.Unlock()

	if c.hot != nil {
		c.hot.Set(contentHash, result)
	}
	return nil
}

// maybeEvictLocked removes the oldest 25% of entries by last access time
// once the index reaches maxEntries. Caller must hold c.mu.
func (c *Cache) maybeEvictLocked() {
	if len(c.index) < c.maxEntries {
		return
	}

	type keyed struct {
		hash  string
		entry *indexEntry
	}
	all := make([]keyed, 0, len(c.index))
	for h, e := range c.index {
		all = append(all, keyed{h, e})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].entry.lastAccess.Before(all[j].entry.lastAccess)
	})

	toRemove := len(all) / 4
	if toRemove < 1 {
		toRemove = 1
	}
	for _, k := range all[:toRemove] {
		os.Remove(k.entry.path)
		delete(c.index, k.hash)
		if c.hot != nil {
			c.hot.Delete(k.hash)
		}
	}
}

// Clear removes every cached entry from disk and memory.
func (c *Cache) Clear() {
	c.mu.Lock()
	for _, e := range c.index {
		os.Remove(e.path)
	}
	c.index = map[string]*indexEntry{}
	c.hits, c.misses = 0, 0
	c.mu.Unlock()

	if c.hot != nil {
		c.hot.Clear()
	}
}

// Stats reports current cache activity.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.hits + c.misses
	var ratio float64
	if total > 0 {
		ratio = float64(c.hits) / float64(total)
	}
	return Stats{
		Entries:    len(c.index),
		MaxEntries: c.maxEntries,
		Hits:       c.hits,
		Misses:     c.misses,
		HitRatio:   ratio,
		Version:    cacheVersion,
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}
