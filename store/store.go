// Package store persists validated zone-database snapshots using bbolt.
//
// A snapshot is a write-once copy of a loaded tree and its pools that a
// server can open at startup without re-validating the source file. There is
// no update path; a new load replaces the whole snapshot.
package store

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	BucketZones   = []byte("zones")
	BucketRecords = []byte("records")
	BucketPTR     = []byte("ptr_records")
	BucketSources = []byte("sources")
)

var allBuckets = [][]byte{
	BucketZones,
	BucketRecords,
	BucketPTR,
	BucketSources,
}

// ErrNotFound is returned when a snapshot entry does not exist.
var ErrNotFound = errors.New("not found")

// Store is a zone-database snapshot backed by bbolt.
type Store struct {
	db   *bolt.DB
	path string
}

// Options configures the Store.
type Options struct {
	// Path is the snapshot database file. Defaults to zonedb.db in the
	// working directory.
	Path string
}

// Open opens or creates a snapshot store.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		opts.Path = "zonedb.db"
	}

	db, err := bolt.Open(opts.Path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	s := &Store{db: db, path: opts.Path}
	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initBuckets() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}
