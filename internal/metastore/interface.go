// Package metastore provides the persistent slot for the workspace metadata
// record. The record is small: image ids, names, blob store keys, and UI
// state. Bulk image bytes live in the blob store.
package metastore

import (
	"context"
	"errors"

	"github.com/chenyangcun/aiedit/internal/models"
)

// ErrNotFound is returned when no record has been saved.
var ErrNotFound = errors.New("record not found")

// Store defines the contract for metadata persistence. Absence of a record
// means "no saved state".
type Store interface {
	// Get returns the saved record. Returns ErrNotFound if none exists.
	// A present but unparseable record is returned as a non-ErrNotFound
	// error; callers treat that as corruption.
	Get(ctx context.Context) (*models.PersistedRecord, error)

	// Put replaces the saved record.
	Put(ctx context.Context, rec *models.PersistedRecord) error

	// Delete removes the saved record. No error if none exists.
	Delete(ctx context.Context) error

	// Close releases resources.
	Close() error
}
