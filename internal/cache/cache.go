// Package cache persists rendered diagram fragments in a bbolt database so
// that unchanged diagrams skip their external tool on the next run.
package cache

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ErrCacheOpen is returned when the database cannot be opened.
var ErrCacheOpen = errors.New("cannot open diagram cache")

const bucketDiagrams = "diagrams"

// openTimeout bounds the wait for another process's file lock.
const openTimeout = time.Second

// Diagrams is a diagram cache keyed by the SHA-256 of dialect and body.
// It is safe for concurrent use.
type Diagrams struct {
	db *bolt.DB
}

// DefaultPath returns the cache location under the user cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mato", "diagrams.db"), nil
}

// Open opens or creates the cache database at path.
func Open(path string) (*Diagrams, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheOpen, err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCacheOpen, path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketDiagrams))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheOpen, err)
	}
	return &Diagrams{db: db}, nil
}

// Key derives the lookup key of a diagram. The dialect is part of the key
// so that the same body in two dialects is cached separately.
func Key(kind, body string) []byte {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(body))
	return h.Sum(nil)
}

// Get returns the cached fragment for a diagram.
func (c *Diagrams) Get(kind, body string) (string, bool) {
	var (
		value string
		found bool
	)
	_ = c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketDiagrams)).Get(Key(kind, body)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	return value, found
}

// Put stores the rendered fragment of a diagram.
func (c *Diagrams) Put(kind, body, rendered string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketDiagrams)).Put(Key(kind, body), []byte(rendered))
	})
}

// Len returns the number of cached diagrams.
func (c *Diagrams) Len() int {
	n := 0
	_ = c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(bucketDiagrams)).Stats().KeyN
		return nil
	})
	return n
}

// Clear removes every cached diagram.
func (c *Diagrams) Clear() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketDiagrams)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketDiagrams))
		return err
	})
}

// Close releases the database file.
func (c *Diagrams) Close() error {
	return c.db.Close()
}
