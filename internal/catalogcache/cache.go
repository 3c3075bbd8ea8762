// Package catalogcache keeps recently fetched TVMaze payloads in a bbolt file
// so repeated lookups of the same show within the TTL skip the network.
package catalogcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Kind selects the bucket a payload is stored in.
type Kind string

const (
	KindShow     Kind = "shows"
	KindEpisodes Kind = "episodes"
	KindLookup   Kind = "lookups"
)

var kinds = []Kind{KindShow, KindEpisodes, KindLookup}

type entry struct {
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

// Cache is a TTL cache of raw payloads backed by bbolt.
type Cache struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time

	mu sync.Mutex
}

// Open opens (creating) the cache file at path. A non-positive ttl yields a
// cache that never stores or returns anything.
func Open(path string, ttl time.Duration) (*Cache, error) {
	cache := &Cache{ttl: ttl, now: time.Now}
	if ttl <= 0 {
		return cache, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open catalog cache: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, kind := range kinds {
			if _, err := tx.CreateBucketIfNotExists([]byte(kind)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache buckets: %w", err)
	}
	cache.db = db
	return cache, nil
}

// Close releases the cache file.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Enabled reports whether the cache stores anything.
func (c *Cache) Enabled() bool {
	return c != nil && c.db != nil
}

// Get returns a payload stored less than ttl ago.
func (c *Cache) Get(kind Kind, key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	var data []byte
	_ = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(kind))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	if c.now().Sub(e.StoredAt) >= c.ttl {
		return nil, false
	}
	return e.Payload, true
}

// Put stores payload under key. Payloads must be valid JSON.
func (c *Cache) Put(kind Kind, key string, payload []byte) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(entry{StoredAt: c.now().UTC(), Payload: json.RawMessage(payload)})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(kind))
		if b == nil {
			return fmt.Errorf("unknown cache kind %q", kind)
		}
		return b.Put([]byte(key), data)
	})
}

// Purge removes every cached payload and returns how many were dropped.
func (c *Cache) Purge() (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	removed := 0
	err := c.db.Update(func(tx *bolt.Tx) error {
		for _, kind := range kinds {
			b := tx.Bucket([]byte(kind))
			if b != nil {
				removed += b.Stats().KeyN
				if err := tx.DeleteBucket([]byte(kind)); err != nil {
					return err
				}
			}
			if _, err := tx.CreateBucket([]byte(kind)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("purge catalog cache: %w", err)
	}
	return removed, nil
}
