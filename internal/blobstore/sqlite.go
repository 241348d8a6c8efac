package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a single-file SQLite database. This is the
// default backend: one file per workspace, matching the metadata record's
// lifetime.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the blob database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open blob database: %w", err)
	}
	// SQLite allows a single writer; cap the pool so concurrent Puts
	// serialize on one connection instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		mime_type TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create blobs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get retrieves a blob by key. Returns ErrBlobNotFound if missing.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*Blob, error) {
	blob := &Blob{}
	err := s.db.QueryRowContext(ctx,
		"SELECT data, mime_type FROM blobs WHERE key = ?", key,
	).Scan(&blob.Data, &blob.MimeType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %s: %w", key, err)
	}
	return blob, nil
}

// Put stores a blob, replacing any existing value for the key.
func (s *SQLiteStore) Put(ctx context.Context, key string, blob *Blob) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (key, data, mime_type) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, mime_type = excluded.mime_type`,
		key, blob.Data, blob.MimeType,
	)
	if err != nil {
		return fmt.Errorf("put blob %s: %w", key, err)
	}
	return nil
}

// Delete removes a blob. Missing keys are not an error.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM blobs WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// Keys returns all blob keys in the store.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM blobs ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("list blob keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
