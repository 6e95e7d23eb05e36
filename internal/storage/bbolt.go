package storage

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	MetaBucket  = []byte("meta")  // Schema version, timestamps
	StateBucket = []byte("state") // Persisted lock keys
)

// Meta keys
var (
	MetaVersion  = []byte("version")
	MetaCreated  = []byte("created")
	MetaModified = []byte("modified")
)

const (
	SchemaVersion = "1"
	FilePerm      = 0600
	openTimeout   = time.Second
)

var (
	ErrNotFound = errors.New("key not found")
	ErrLocked   = errors.New("database is locked by another process")
)

// Info describes the state database
type Info struct {
	Path     string
	Version  string
	Created  time.Time
	Modified time.Time
	Keys     int
}

// Storage is a BBolt-backed key-value store for lock state
type Storage struct {
	db *bolt.DB
}

// Open opens or creates a state database and ensures its buckets exist
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, FilePerm, &bolt.Options{Timeout: openTimeout})
	if errors.Is(err, bolt.ErrTimeout) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

func (s *Storage) initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{MetaBucket, StateBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		meta := tx.Bucket(MetaBucket)
		if meta.Get(MetaVersion) != nil {
			return nil
		}
		if err := meta.Put(MetaVersion, []byte(SchemaVersion)); err != nil {
			return err
		}
		created, _ := time.Now().MarshalBinary()
		if err := meta.Put(MetaCreated, created); err != nil {
			return err
		}
		return meta.Put(MetaModified, created)
	})
}

// touch updates the modified timestamp inside an open transaction
func touch(tx *bolt.Tx) error {
	modified, _ := time.Now().MarshalBinary()
	return tx.Bucket(MetaBucket).Put(MetaModified, modified)
}

// Lookup returns the value stored under key, or ErrNotFound
func (s *Storage) Lookup(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(StateBucket).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		// Copy since the slice is only valid during the transaction
		value = string(data)
		return nil
	})
	return value, err
}

// Get returns the value stored under key. Read errors are reported as absence.
func (s *Storage) Get(key string) (string, bool) {
	value, err := s.Lookup(key)
	if err != nil {
		return "", false
	}
	return value, true
}

// Set stores value under key
func (s *Storage) Set(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(StateBucket).Put([]byte(key), []byte(value)); err != nil {
			return err
		}
		return touch(tx)
	})
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Storage) Remove(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(StateBucket).Delete([]byte(key)); err != nil {
			return err
		}
		return touch(tx)
	})
}

// Keys returns all stored keys in sorted order
func (s *Storage) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(StateBucket).ForEach(func(k, v []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	sort.Strings(keys)
	return keys, err
}

// Reset deletes every stored key and returns how many were removed
func (s *Storage) Reset() (int, error) {
	var removed int
	err := s.db.Update(func(tx *bolt.Tx) error {
		removed = tx.Bucket(StateBucket).Stats().KeyN
		if err := tx.DeleteBucket(StateBucket); err != nil {
			return err
		}
		if _, err := tx.CreateBucket(StateBucket); err != nil {
			return err
		}
		return touch(tx)
	})
	return removed, err
}

// Info returns metadata about the database
func (s *Storage) Info() (*Info, error) {
	info := &Info{Path: s.db.Path()}
	err := s.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(MetaBucket)
		info.Version = string(meta.Get(MetaVersion))
		if data := meta.Get(MetaCreated); data != nil {
			if err := info.Created.UnmarshalBinary(data); err != nil {
				return fmt.Errorf("bad created timestamp: %w", err)
			}
		}
		if data := meta.Get(MetaModified); data != nil {
			if err := info.Modified.UnmarshalBinary(data); err != nil {
				return fmt.Errorf("bad modified timestamp: %w", err)
			}
		}
		info.Keys = tx.Bucket(StateBucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Compact creates a compacted copy of the database, removing unused space.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, FilePerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// The original stays in place when the swap fails; reopen either way
	swapErr := replaceFile(srcPath, tmpPath)

	db, err := bolt.Open(srcPath, FilePerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}
	s.db = db

	return swapErr
}

// rename is swapped out in tests to simulate filesystem failures
var rename = os.Rename

// replaceFile moves tmpPath over srcPath, restoring srcPath on failure
func replaceFile(srcPath, tmpPath string) error {
	backupPath := srcPath + ".backup"
	if err := rename(srcPath, backupPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := rename(tmpPath, srcPath); err != nil {
		rename(backupPath, srcPath) // rollback
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)
	return nil
}
