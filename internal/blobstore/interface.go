// Package blobstore provides keyed binary storage for full-resolution image
// payloads, kept outside the lightweight metadata record.
package blobstore

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned when a requested blob does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// Blob is one stored payload with its mime type.
type Blob struct {
	Data     []byte
	MimeType string
}

// Store defines the contract for blob persistence. Keys are namespaced
// "<imageID>_original" and "<imageID>_history_<index>".
type Store interface {
	// Get returns the blob for the given key.
	// Returns ErrBlobNotFound if the blob does not exist.
	Get(ctx context.Context, key string) (*Blob, error)

	// Put stores a blob under the given key, overwriting any previous value.
	Put(ctx context.Context, key string, blob *Blob) error

	// Delete removes a blob. No error if it doesn't exist.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys currently in the store.
	Keys(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
