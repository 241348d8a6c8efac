package persist

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/chenyangcun/aiedit/internal/blobstore"
	"github.com/chenyangcun/aiedit/internal/metastore"
	"github.com/chenyangcun/aiedit/internal/models"
	"github.com/chenyangcun/aiedit/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func newTestPipeline(t *testing.T) (*Pipeline, blobstore.Store, metastore.Store) {
	t.Helper()
	dir := t.TempDir()

	blobs, err := blobstore.NewSQLiteStore(filepath.Join(dir, "blobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { blobs.Close() })

	meta, err := metastore.NewBboltStore(filepath.Join(dir, "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { meta.Close() })

	return NewPipeline(blobs, meta, slog.Default()), blobs, meta
}

func testSnapshot() *session.Snapshot {
	return &session.Snapshot{
		Images: []*models.Image{
			{
				ID:               "cat.png-1700000000000",
				Name:             "cat.png",
				OriginalData:     []byte("cat-original"),
				OriginalMimeType: "image/png",
				History: []models.HistoryEntry{
					{Data: []byte("cat-rotated"), MimeType: "image/png", Label: "Rotate right"},
					{Data: []byte("cat-gray"), MimeType: "image/png", Label: "Grayscale filter"},
				},
			},
			{
				ID:               "generated-1700000000001",
				Name:             "Generated: a red fox",
				OriginalData:     []byte("fox-original"),
				OriginalMimeType: "image/png",
			},
		},
		SelectedImageID:   "cat.png-1700000000000",
		ReferenceImageIDs: []string{"generated-1700000000001"},
		Prompt:            "a red fox",
		Cursor:            1,
		ShowThumbnails:    true,
		Mode:              models.ModeEdit,
	}
}

func TestPipeline_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPipeline(t)

	snap := testSnapshot()
	require.NoError(t, p.Save(ctx, snap))

	got := p.Load(ctx)

	assert.Equal(t, snap.SelectedImageID, got.SelectedImageID)
	assert.Equal(t, snap.ReferenceImageIDs, got.ReferenceImageIDs)
	assert.Equal(t, snap.Prompt, got.Prompt)
	assert.Equal(t, snap.Cursor, got.Cursor)
	assert.Equal(t, snap.ShowThumbnails, got.ShowThumbnails)
	assert.Equal(t, snap.Mode, got.Mode)
	require.Len(t, got.Images, 2)
	assert.Equal(t, snap.Images[0], got.Images[0])
	assert.Equal(t, snap.Images[1], got.Images[1])
}

func TestPipeline_SaveWritesExpectedKeys(t *testing.T) {
	ctx := context.Background()
	p, blobs, _ := newTestPipeline(t)

	require.NoError(t, p.Save(ctx, testSnapshot()))

	keys, err := blobs.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"cat.png-1700000000000_original",
		"cat.png-1700000000000_history_0",
		"cat.png-1700000000000_history_1",
		"generated-1700000000001_original",
	}, keys)
}

func TestPipeline_EmptySnapshotDeletesRecord(t *testing.T) {
	ctx := context.Background()
	p, _, meta := newTestPipeline(t)

	require.NoError(t, p.Save(ctx, testSnapshot()))
	require.NoError(t, p.Save(ctx, &session.Snapshot{}))

	_, err := meta.Get(ctx)
	assert.ErrorIs(t, err, metastore.ErrNotFound)
}

func TestPipeline_LoadNoRecordStartsEmpty(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	got := p.Load(context.Background())

	assert.Empty(t, got.Images)
	assert.Equal(t, models.OriginalCursor, got.Cursor)
	assert.True(t, got.ShowThumbnails)
	assert.Equal(t, models.ModeEdit, got.Mode)
}

func TestPipeline_MissingOriginalBlobDropsImage(t *testing.T) {
	ctx := context.Background()
	p, blobs, _ := newTestPipeline(t)

	require.NoError(t, p.Save(ctx, testSnapshot()))
	require.NoError(t, blobs.Delete(ctx, "cat.png-1700000000000_original"))

	got := p.Load(ctx)

	require.Len(t, got.Images, 1)
	assert.Equal(t, "generated-1700000000001", got.Images[0].ID)
}

func TestPipeline_MissingHistoryBlobDropsOnlyThatEntry(t *testing.T) {
	ctx := context.Background()
	p, blobs, _ := newTestPipeline(t)

	require.NoError(t, p.Save(ctx, testSnapshot()))
	require.NoError(t, blobs.Delete(ctx, "cat.png-1700000000000_history_0"))

	got := p.Load(ctx)

	require.Len(t, got.Images, 2)
	img := got.Images[0]
	require.Len(t, img.History, 1)
	assert.Equal(t, []byte("cat-gray"), img.History[0].Data)
	assert.Equal(t, "Grayscale filter", img.History[0].Label)
}

func TestPipeline_InvalidModeDefaultsToEdit(t *testing.T) {
	ctx := context.Background()
	p, _, meta := newTestPipeline(t)

	require.NoError(t, meta.Put(ctx, &models.PersistedRecord{
		Images: []models.PersistedImage{{ID: "ghost", OriginalSrcKey: "ghost_original"}},
		Mode:   "???",
	}))

	got := p.Load(ctx)

	// The ghost image's blob is absent, so it is dropped; the invalid
	// mode falls back to edit.
	assert.Empty(t, got.Images)
	assert.Equal(t, models.ModeEdit, got.Mode)
}

func TestPipeline_CorruptRecordClearsAndStartsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "meta.db")

	// Plant an unparseable record before the metastore opens the file.
	db, err := bolt.Open(metaPath, 0600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte("autosave"))
		if err != nil {
			return err
		}
		return b.Put([]byte("metadata"), []byte("{not json"))
	}))
	require.NoError(t, db.Close())

	blobs, err := blobstore.NewSQLiteStore(filepath.Join(dir, "blobs.db"))
	require.NoError(t, err)
	defer blobs.Close()
	meta, err := metastore.NewBboltStore(metaPath)
	require.NoError(t, err)
	defer meta.Close()

	p := NewPipeline(blobs, meta, slog.Default())
	got := p.Load(ctx)

	assert.Empty(t, got.Images)

	// The corrupt record was cleared so it is not retried next startup.
	_, err = meta.Get(ctx)
	assert.ErrorIs(t, err, metastore.ErrNotFound)
}
