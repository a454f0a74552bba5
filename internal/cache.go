package internal

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	tt "github.com/gnolang/treematch/internal/types"
)

const cacheFileName = "treematch_cache.gob"

type cacheEntry struct {
	Hash      string
	DepHash   string
	CreatedAt time.Time
	Issues    []tt.Issue
}

// Cache remembers the issues found per file. An entry is valid while the
// file content and every dependency file (typically the configuration)
// are unchanged and it is younger than the maximum age.
type Cache struct {
	dir     string
	maxAge  time.Duration
	depHash string

	mu      sync.Mutex
	entries map[string]cacheEntry
	dirty   bool
}

// NewCache opens or creates the cache stored in dir. A zero maxAge never
// expires entries.
func NewCache(dir string, maxAge time.Duration, dependencies ...string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	depHash, err := hashFiles(dependencies...)
	if err != nil {
		return nil, fmt.Errorf("failed to hash cache dependencies: %w", err)
	}

	c := &Cache{
		dir:     dir,
		maxAge:  maxAge,
		depHash: depHash,
		entries: make(map[string]cacheEntry),
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return c, nil
}

// Scope mixes parts into the dependency hash. Entries recorded under a
// different scope are stale.
func (c *Cache) Scope(parts ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := sha256.New()
	h.Write([]byte(c.depHash))
	for _, part := range parts {
		h.Write([]byte{0})
		h.Write([]byte(part))
	}
	c.depHash = hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) path() string {
	return filepath.Join(c.dir, cacheFileName)
}

func (c *Cache) load() error {
	file, err := os.Open(c.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewDecoder(file).Decode(&c.entries)
}

// Get returns the cached issues of filename if they are still valid.
func (c *Cache) Get(filename string) ([]tt.Issue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[filename]
	if !ok {
		return nil, false
	}
	if !c.valid(filename, entry) {
		delete(c.entries, filename)
		c.dirty = true
		return nil, false
	}
	return entry.Issues, true
}

func (c *Cache) valid(filename string, entry cacheEntry) bool {
	if c.maxAge > 0 && time.Since(entry.CreatedAt) > c.maxAge {
		return false
	}
	if entry.DepHash != c.depHash {
		return false
	}
	hash, err := hashFiles(filename)
	return err == nil && hash == entry.Hash
}

// Set records issues for the current content of filename.
func (c *Cache) Set(filename string, issues []tt.Issue) error {
	hash, err := hashFiles(filename)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[filename] = cacheEntry{
		Hash:      hash,
		DepHash:   c.depHash,
		CreatedAt: time.Now(),
		Issues:    issues,
	}
	c.dirty = true
	return nil
}

// Flush writes the cache to disk if it changed.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	file, err := os.Create(c.path())
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	c.dirty = false
	return nil
}

// InvalidateAll drops every entry, in memory and on disk.
func (c *Cache) InvalidateAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	c.dirty = false
	if err := os.Remove(c.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func hashFiles(filenames ...string) (string, error) {
	h := sha256.New()
	for _, name := range filenames {
		f, err := os.Open(name)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", err
		}
		// file separator
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
