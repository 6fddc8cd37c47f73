// Package artcache stores provider image payloads in a bbolt file so repeated
// scans and automatic runs do not hit provider rate limits.
//
// Entries expire by the age of the item: recently released items change
// artwork often and use the short TTL, older items the long one.
package artcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"artreview/internal/providers"
)

// RecentWindow is how long after release an item counts as recent.
const RecentWindow = 90 * 24 * time.Hour

var bucketImages = []byte("images")

type record struct {
	Provider  string           `json:"provider"`
	StoredAt  time.Time        `json:"stored_at"`
	ExpiresAt time.Time        `json:"expires_at"`
	Images    providers.Images `json:"images"`
}

// Cache is a TTL cache of provider results keyed by provider and item.
type Cache struct {
	db        *bolt.DB
	ttl       time.Duration
	recentTTL time.Duration
	now       func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// Open opens or creates the cache file at path.
func Open(path string, ttl, recentTTL time.Duration, opts ...Option) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open provider cache: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketImages)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache bucket: %w", err)
	}
	if recentTTL <= 0 || recentTTL > ttl {
		recentTTL = ttl
	}
	c := &Cache{db: db, ttl: ttl, recentTTL: recentTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the cache file.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// TTLFor returns the lifetime of a payload for ref.
func (c *Cache) TTLFor(ref providers.Ref) time.Duration {
	if !ref.Released.IsZero() && c.now().Sub(ref.Released) < RecentWindow {
		return c.recentTTL
	}
	return c.ttl
}

// Get returns the cached payload when present and unexpired.
func (c *Cache) Get(provider string, ref providers.Ref) (providers.Images, bool) {
	var data []byte
	_ = c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketImages).Get(key(provider, ref)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return nil, false
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	if !c.now().Before(rec.ExpiresAt) {
		return nil, false
	}
	if rec.Images == nil {
		rec.Images = providers.Images{}
	}
	return rec.Images, true
}

// Put stores a payload for ref.
func (c *Cache) Put(provider string, ref providers.Ref, images providers.Images) error {
	now := c.now()
	rec := record{
		Provider:  provider,
		StoredAt:  now,
		ExpiresAt: now.Add(c.TTLFor(ref)),
		Images:    images,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode cache record: %w", err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketImages).Put(key(provider, ref), data)
	})
}

// Prune deletes expired entries and returns how many were removed.
func (c *Cache) Prune() (int, error) {
	now := c.now()
	removed := 0
	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketImages)
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var rec record
			if json.Unmarshal(v, &rec) != nil || !now.Before(rec.ExpiresAt) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	return removed, err
}

// Clear removes every entry and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	removed := 0
	err := c.db.Update(func(tx *bolt.Tx) error {
		removed = tx.Bucket(bucketImages).Stats().KeyN
		if err := tx.DeleteBucket(bucketImages); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketImages)
		return err
	})
	return removed, err
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	n := 0
	_ = c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketImages).Stats().KeyN
		return nil
	})
	return n
}

func key(provider string, ref providers.Ref) []byte {
	return []byte(provider + "|" + ref.Key())
}
