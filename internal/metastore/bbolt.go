package metastore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chenyangcun/aiedit/internal/models"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketAutosave = []byte("autosave")
	recordKey      = []byte("metadata")
)

// BboltStore implements Store using bbolt.
type BboltStore struct {
	db *bolt.DB
}

// NewBboltStore opens or creates a bbolt database at the given path.
func NewBboltStore(dbPath string) (*BboltStore, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create meta directory: %w", err)
		}
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open meta database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketAutosave)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create autosave bucket: %w", err)
	}

	return &BboltStore{db: db}, nil
}

// Close releases the bbolt database.
func (s *BboltStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get retrieves the saved record. Returns ErrNotFound if none exists.
func (s *BboltStore) Get(_ context.Context) (*models.PersistedRecord, error) {
	var rec *models.PersistedRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketAutosave).Get(recordKey)
		if data == nil {
			return ErrNotFound
		}
		rec = &models.PersistedRecord{}
		if err := json.Unmarshal(data, rec); err != nil {
			return fmt.Errorf("parse record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Put replaces the saved record.
func (s *BboltStore) Put(_ context.Context, rec *models.PersistedRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAutosave).Put(recordKey, data)
	})
}

// Delete removes the saved record. Missing records are not an error.
func (s *BboltStore) Delete(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAutosave).Delete(recordKey)
	})
}
