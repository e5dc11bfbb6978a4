package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Increment when cachePayload changes shape.
const cacheSchemaVersion uint16 = 1

// Cache stores parsed corpora on disk keyed by the sha256 of the source
// file. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema    uint16
	Source    string
	Doculects []*Doculect
}

// OpenCache returns a cache rooted at dir. An empty dir selects
// $XDG_CACHE_HOME/sonority (or ~/.cache/sonority).
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "sonority")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir is the cache directory.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key [sha256.Size]byte) string {
	return filepath.Join(c.dir, "corpus-"+hex.EncodeToString(key[:])+".msgpack")
}

// Load returns the doculects of the corpus at path, from the cache when the
// file content was seen before, otherwise by parsing it and storing the
// result. hit reports a cache hit.
func (c *Cache) Load(path string) (doculects []*Doculect, hit bool, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read corpus: %w", err)
	}
	key := sha256.Sum256(raw)

	if ds, ok := c.get(key); ok {
		return ds, true, nil
	}

	ds, err := Load(path)
	if err != nil {
		return nil, false, err
	}
	if err := c.put(key, path, ds); err != nil {
		return ds, false, fmt.Errorf("write corpus cache: %w", err)
	}
	return ds, false, nil
}

func (c *Cache) get(key [sha256.Size]byte) ([]*Doculect, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	var p cachePayload
	if err := msgpack.Unmarshal(b, &p); err != nil || p.Schema != cacheSchemaVersion {
		return nil, false
	}
	return p.Doculects, true
}

func (c *Cache) put(key [sha256.Size]byte, source string, ds []*Doculect) error {
	b, err := msgpack.Marshal(&cachePayload{Schema: cacheSchemaVersion, Source: source, Doculects: ds})
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	tmp, err := os.CreateTemp(c.dir, "corpus-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.pathFor(key))
}

// Clear removes every cached corpus.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	matches, err := filepath.Glob(filepath.Join(c.dir, "corpus-*.msgpack"))
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
