// Package cache persists audio-stream hashes between duplicate scans so a
// rescan of a large library only re-hashes files that changed on disk.
package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Entry records the hash of one file plus the stat fields used to detect
// whether the file changed since it was hashed.
type Entry struct {
	Hash     string `json:"hash"`
	Size     int64  `json:"size"`
	ModTime  int64  `json:"mod_time_unix"`
	CachedAt string `json:"cached_at"`
}

// HashCache is a file-backed map from library path to hash entry. It is
// safe for concurrent use.
type HashCache struct {
	path    string
	mu      sync.Mutex
	entries map[string]Entry
	dirty   bool
}

// OpenHashCache loads the cache at path. A missing or corrupt file yields
// an empty cache rather than an error; the cache is an optimization and a
// scan must work without it.
func OpenHashCache(path string) *HashCache {
	c := &HashCache{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		log.Printf("WARN: hash_cache_corrupt path=%s error=%v", path, err)
		c.entries = make(map[string]Entry)
	}
	return c
}

// Lookup returns the cached hash for path when the file's size and
// modification time still match the entry.
func (c *HashCache) Lookup(path string, fi os.FileInfo) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok {
		return "", false
	}
	if entry.Size != fi.Size() || entry.ModTime != fi.ModTime().Unix() {
		delete(c.entries, path)
		c.dirty = true
		return "", false
	}
	return entry.Hash, true
}

// Store records the hash for path against its current size and mtime.
func (c *HashCache) Store(path string, fi os.FileInfo, hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = Entry{
		Hash:     hash,
		Size:     fi.Size(),
		ModTime:  fi.ModTime().Unix(),
		CachedAt: time.Now().Format(time.RFC3339),
	}
	c.dirty = true
}

// Len reports the number of cached entries.
func (c *HashCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Save writes the cache back to disk, first dropping entries whose files
// no longer exist so moved or deleted tracks do not accumulate. Saving is
// skipped when nothing changed since load.
func (c *HashCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for path := range c.entries {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			delete(c.entries, path)
			c.dirty = true
		}
	}
	if !c.dirty {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode hash cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write hash cache %s: %w", c.path, err)
	}
	c.dirty = false
	return nil
}
