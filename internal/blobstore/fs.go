package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSStore implements Store using the local filesystem. Keys may contain
// arbitrary characters (image ids embed file names), so each key is hashed
// and blobs are stored in a two-level directory structure using the first
// two characters of the hash as a prefix directory. A sidecar .meta file
// records the original key and mime type.
type FSStore struct {
	root string
}

// blobMeta is the sidecar record stored next to each blob.
type blobMeta struct {
	Key      string `json:"key"`
	MimeType string `json:"mimeType"`
}

// NewFSStore creates a filesystem-backed blob store rooted at the given directory.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FSStore{root: root}, nil
}

// Close is a no-op for the filesystem store.
func (s *FSStore) Close() error { return nil }

// Get retrieves a blob by key. Returns ErrBlobNotFound if missing.
func (s *FSStore) Get(_ context.Context, key string) (*Blob, error) {
	meta, err := s.readMeta(s.metaPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("read blob meta %s: %w", key, err)
	}

	data, err := os.ReadFile(s.blobPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}

	return &Blob{Data: data, MimeType: meta.MimeType}, nil
}

// Put stores a blob, overwriting any existing value for the key.
func (s *FSStore) Put(_ context.Context, key string, blob *Blob) error {
	blobPath := s.blobPath(key)

	if err := os.MkdirAll(filepath.Dir(blobPath), 0755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}

	// Write to temp file, then rename for atomicity.
	tmpFile, err := os.CreateTemp(filepath.Dir(blobPath), ".blob-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(blob.Data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write blob data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, blobPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename blob: %w", err)
	}

	metaData, err := json.Marshal(blobMeta{Key: key, MimeType: blob.MimeType})
	if err != nil {
		return fmt.Errorf("marshal blob meta: %w", err)
	}
	if err := os.WriteFile(s.metaPath(key), metaData, 0644); err != nil {
		return fmt.Errorf("write blob meta: %w", err)
	}
	return nil
}

// Delete removes a blob and its metadata file.
func (s *FSStore) Delete(_ context.Context, key string) error {
	os.Remove(s.blobPath(key))
	os.Remove(s.metaPath(key))
	return nil
}

// Keys returns all blob keys by scanning the sidecar metadata files.
func (s *FSStore) Keys(_ context.Context) ([]string, error) {
	var keys []string

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".meta") {
			return nil
		}
		meta, err := s.readMeta(path)
		if err != nil {
			return nil // skip unreadable sidecars
		}
		keys = append(keys, meta.Key)
		return nil
	})

	return keys, err
}

// blobPath returns the filesystem path for a blob.
func (s *FSStore) blobPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	hash := hex.EncodeToString(sum[:])
	return filepath.Join(s.root, hash[:2], hash[2:])
}

// metaPath returns the filesystem path for a blob's sidecar metadata.
func (s *FSStore) metaPath(key string) string {
	return s.blobPath(key) + ".meta"
}

// readMeta reads and parses a sidecar metadata file.
func (s *FSStore) readMeta(path string) (*blobMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta blobMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
