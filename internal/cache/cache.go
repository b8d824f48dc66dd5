// Package cache stores completions keyed by model and serialized conversation.
//
// Entries live in an in-memory map for lookups and in a BadgerDB directory for
// durability. The store is append-only: an entry, once written, is never
// replaced or removed.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/sync/singleflight"

	"github.com/mwiater/fewshot/internal/logging"
)

// Config holds configuration for a cache instance.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is true.
	Path string
	// InMemory keeps the durable layer in RAM. Useful for tests.
	InMemory bool
	// SyncWrites fsyncs every write before returning.
	SyncWrites bool
}

// DefaultConfig returns a durable configuration rooted at path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a configuration with no disk persistence.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Entry is the durable record for one completion.
type Entry struct {
	Model      string `json:"model"`
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// Cache maps (model, serialized conversation) to completion text.
// It is safe for concurrent use.
type Cache struct {
	db *badger.DB

	mu      sync.RWMutex
	entries map[string]string

	group singleflight.Group
}

type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.LogEvent("[CACHE] badger error: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.LogEvent("[CACHE] badger warning: "+format, args...)
}

func (badgerLogger) Infof(string, ...interface{})  {}
func (badgerLogger) Debugf(string, ...interface{}) {}

// Open opens the durable store described by cfg. Call Load before the first
// lookup to populate memory from disk.
func Open(cfg Config) (*Cache, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("cache: path is required for persistent cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("cache: create directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: open badger database: %w", err)
	}

	return &Cache{db: db, entries: make(map[string]string)}, nil
}

// Key joins model and serialized conversation into the cache key.
func Key(model, serialized string) string {
	return model + "\n" + serialized
}

func storageKey(key string) []byte {
	sum := sha256.Sum256([]byte(key))
	return []byte(hex.EncodeToString(sum[:]))
}

// Load reads every durable entry into memory and returns how many were loaded.
func (c *Cache) Load() (int, error) {
	loaded := make(map[string]string)
	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var e Entry
				if err := json.Unmarshal(val, &e); err != nil {
					return fmt.Errorf("decode entry %s: %w", item.Key(), err)
				}
				loaded[Key(e.Model, e.Prompt)] = e.Completion
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cache: load: %w", err)
	}

	c.mu.Lock()
	for k, v := range loaded {
		if _, ok := c.entries[k]; !ok {
			c.entries[k] = v
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	logging.LogEvent("[CACHE] loaded %d entries", n)
	return n, nil
}

// Get returns the cached completion for model and serialized conversation.
func (c *Cache) Get(model, serialized string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[Key(model, serialized)]
	return v, ok
}

// Put records a completion in memory and on disk. An existing entry is kept.
func (c *Cache) Put(model, serialized, completion string) error {
	key := Key(model, serialized)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return nil
	}

	data, err := json.Marshal(Entry{Model: model, Prompt: serialized, Completion: completion})
	if err != nil {
		return fmt.Errorf("cache: encode entry: %w", err)
	}
	if err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(storageKey(key), data)
	}); err != nil {
		return fmt.Errorf("cache: write entry: %w", err)
	}
	c.entries[key] = completion
	return nil
}

// Do returns the cached completion, or calls fetch once per key and stores its
// result. Concurrent callers with the same key share one fetch. The boolean
// reports whether the value came from the cache.
func (c *Cache) Do(model, serialized string, fetch func() (string, error)) (string, bool, error) {
	if v, ok := c.Get(model, serialized); ok {
		return v, true, nil
	}

	v, err, _ := c.group.Do(Key(model, serialized), func() (interface{}, error) {
		if v, ok := c.Get(model, serialized); ok {
			return v, nil
		}
		out, err := fetch()
		if err != nil {
			return "", err
		}
		if err := c.Put(model, serialized, out); err != nil {
			return "", err
		}
		return out, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), false, nil
}

// Len returns the number of entries held in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close flushes and closes the durable store.
func (c *Cache) Close() error {
	return c.db.Close()
}
