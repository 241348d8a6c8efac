package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenyangcun/aiedit/internal/blobstore"
)

func TestGarbageCollect(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps referenced blobs, removes orphans", func(t *testing.T) {
		pipeline, blobs, _ := newTestPipeline(t)
		require.NoError(t, pipeline.Save(ctx, testSnapshot()))

		require.NoError(t, blobs.Put(ctx, "stale_original", &blobstore.Blob{
			Data:     []byte("left behind by a deleted image"),
			MimeType: "image/png",
		}))

		keys, err := blobs.Keys(ctx)
		require.NoError(t, err)
		before := len(keys)

		result, err := pipeline.GarbageCollect(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, result.BlobsScanned)
		assert.Equal(t, 1, result.BlobsDeleted)

		_, err = blobs.Get(ctx, "stale_original")
		assert.ErrorIs(t, err, blobstore.ErrBlobNotFound)

		// The saved state still rehydrates fully.
		snap := pipeline.Load(ctx)
		assert.Len(t, snap.Images, len(testSnapshot().Images))
	})

	t.Run("no record collects everything", func(t *testing.T) {
		pipeline, blobs, _ := newTestPipeline(t)
		require.NoError(t, blobs.Put(ctx, "orphan", &blobstore.Blob{Data: []byte("x"), MimeType: "image/png"}))

		result, err := pipeline.GarbageCollect(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, result.ReferencedKeys)
		assert.Equal(t, 1, result.BlobsDeleted)
	})

	t.Run("empty store is a no-op", func(t *testing.T) {
		pipeline, _, _ := newTestPipeline(t)
		result, err := pipeline.GarbageCollect(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, result.BlobsScanned)
		assert.Equal(t, 0, result.BlobsDeleted)
	})
}
