package launchstore

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	dbFile        = "access-launcher.launch-index"
	bucketName    = "launch_index"
	dbPermissions = 0600
)

// Store persists per-entry launch counts using bbolt DB. Counts are keyed
// by the entry identifier, which is stable across scans, unlike the
// per-scan wire handles.
type Store struct {
	db *bbolt.DB
}

// NewStore creates or opens the bbolt database for the launch index.
func NewStore() (*Store, error) {
	// Get cache directory
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return NewStoreWithCacheDir(cacheDir)
}

// NewStoreWithCacheDir is like NewStore but uses the given cache directory.
func NewStoreWithCacheDir(cacheDir string) (*Store, error) {
	// Create access-launcher directory in cache if it doesn't exist
	storeDir := filepath.Join(cacheDir, "access-launcher")
	if err := os.MkdirAll(storeDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(storeDir, dbFile)

	// Open the bbolt database
	db, err := bbolt.Open(dbPath, dbPermissions, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create the bucket if it doesn't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Record increases the launch count for an entry identifier and returns
// the new count.
func (s *Store) Record(id string) (uint64, error) {
	var count uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}

		// Get current count
		val := b.Get([]byte(id))
		if val != nil {
			count = binary.BigEndian.Uint64(val)
		}

		// Increment count
		count++

		// Put new count
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, count)
		return b.Put([]byte(id), buf)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Counts retrieves the launch counts for a list of entry identifiers.
func (s *Store) Counts(ids []string) map[string]uint64 {
	counts := make(map[string]uint64)
	s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil // Bucket doesn't exist, no counts
		}

		for _, id := range ids {
			val := b.Get([]byte(id))
			if val != nil {
				counts[id] = binary.BigEndian.Uint64(val)
			} else {
				counts[id] = 0
			}
		}
		return nil
	})
	return counts
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
