// Package persist keeps a durable copy of the workspace across runs. It
// dehydrates the in-memory state into a small metadata record plus bulk
// blob writes, and rehydrates the state from those two stores on startup.
package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chenyangcun/aiedit/internal/blobstore"
	"github.com/chenyangcun/aiedit/internal/metastore"
	"github.com/chenyangcun/aiedit/internal/models"
	"github.com/chenyangcun/aiedit/internal/session"
	"golang.org/x/sync/errgroup"
)

// blobWriteConcurrency bounds parallel blob writes within one save pass.
const blobWriteConcurrency = 8

// Pipeline performs the dehydrate and rehydrate transforms between the
// workspace state and the metadata + blob stores.
type Pipeline struct {
	blobs  blobstore.Store
	meta   metastore.Store
	logger *slog.Logger
}

// NewPipeline creates a pipeline over the given stores.
func NewPipeline(blobs blobstore.Store, meta metastore.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{blobs: blobs, meta: meta, logger: logger}
}

// Save dehydrates the snapshot: image bytes go to the blob store under
// "<id>_original" and "<id>_history_<i>" keys, then the metadata record is
// written referencing those keys. The metadata write happens only after
// every blob write has completed, so a crash mid-save never leaves the
// record pointing at unwritten keys. An empty image set deletes the record.
func (p *Pipeline) Save(ctx context.Context, snap *session.Snapshot) error {
	if len(snap.Images) == 0 {
		if err := p.meta.Delete(ctx); err != nil {
			return fmt.Errorf("delete record: %w", err)
		}
		return nil
	}

	rec := &models.PersistedRecord{
		Images:             make([]models.PersistedImage, len(snap.Images)),
		SelectedImageID:    snap.SelectedImageID,
		ReferenceImageIDs:  append([]string{}, snap.ReferenceImageIDs...),
		Prompt:             snap.Prompt,
		ActiveHistoryIndex: snap.Cursor,
		ShowThumbnails:     snap.ShowThumbnails,
		Mode:               snap.Mode,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(blobWriteConcurrency)

	for i, img := range snap.Images {
		persisted := models.PersistedImage{
			ID:             img.ID,
			Name:           img.Name,
			OriginalSrcKey: models.OriginalKey(img.ID),
			History:        make([]models.PersistedHistoryEntry, len(img.History)),
		}

		orig := &blobstore.Blob{Data: img.OriginalData, MimeType: img.OriginalMimeType}
		origKey := persisted.OriginalSrcKey
		eg.Go(func() error {
			return p.blobs.Put(egCtx, origKey, orig)
		})

		for j, entry := range img.History {
			key := models.HistoryKey(img.ID, j)
			persisted.History[j] = models.PersistedHistoryEntry{Label: entry.Label, SrcKey: key}
			blob := &blobstore.Blob{Data: entry.Data, MimeType: entry.MimeType}
			eg.Go(func() error {
				return p.blobs.Put(egCtx, key, blob)
			})
		}

		rec.Images[i] = persisted
	}

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("write blobs: %w", err)
	}

	if err := p.meta.Put(ctx, rec); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Load rehydrates a snapshot from the stores. An absent record yields an
// empty snapshot. A malformed record, or any read failure, clears the
// record and yields an empty snapshot: the pipeline fails open to a clean
// slate rather than blocking startup. Images whose original blob is missing
// are dropped entirely; history entries whose blob is missing are dropped
// individually, preserving the order of the rest.
func (p *Pipeline) Load(ctx context.Context) *session.Snapshot {
	snap, err := p.load(ctx)
	if err != nil {
		p.logger.Error("failed to load saved state, starting empty", "error", err)
		if delErr := p.meta.Delete(ctx); delErr != nil {
			p.logger.Warn("failed to clear saved state", "error", delErr)
		}
		return emptySnapshot()
	}
	return snap
}

func (p *Pipeline) load(ctx context.Context) (*session.Snapshot, error) {
	rec, err := p.meta.Get(ctx)
	if errors.Is(err, metastore.ErrNotFound) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}

	mode := rec.Mode
	if !mode.Valid() {
		mode = models.ModeEdit
	}
	snap := &session.Snapshot{
		SelectedImageID:   rec.SelectedImageID,
		ReferenceImageIDs: rec.ReferenceImageIDs,
		Prompt:            rec.Prompt,
		Cursor:            rec.ActiveHistoryIndex,
		ShowThumbnails:    rec.ShowThumbnails,
		Mode:              mode,
	}

	images := make([]*models.Image, len(rec.Images))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(blobWriteConcurrency)

	for i, persisted := range rec.Images {
		eg.Go(func() error {
			img, err := p.loadImage(egCtx, persisted)
			if err != nil {
				return err
			}
			images[i] = img // nil when the original blob is missing
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("read blobs: %w", err)
	}

	for _, img := range images {
		if img != nil {
			snap.Images = append(snap.Images, img)
		}
	}
	return snap, nil
}

// loadImage rehydrates one image. Returns (nil, nil) when the original blob
// is missing; a partial image is never reconstructed with holes.
func (p *Pipeline) loadImage(ctx context.Context, persisted models.PersistedImage) (*models.Image, error) {
	orig, err := p.blobs.Get(ctx, persisted.OriginalSrcKey)
	if errors.Is(err, blobstore.ErrBlobNotFound) {
		p.logger.Warn("dropping image with missing original blob",
			"image", persisted.ID, "key", persisted.OriginalSrcKey)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	img := &models.Image{
		ID:               persisted.ID,
		Name:             persisted.Name,
		OriginalData:     orig.Data,
		OriginalMimeType: orig.MimeType,
	}

	for _, entry := range persisted.History {
		blob, err := p.blobs.Get(ctx, entry.SrcKey)
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			p.logger.Warn("dropping history entry with missing blob",
				"image", persisted.ID, "key", entry.SrcKey)
			continue
		}
		if err != nil {
			return nil, err
		}
		img.History = append(img.History, models.HistoryEntry{
			Data:     blob.Data,
			MimeType: blob.MimeType,
			Label:    entry.Label,
		})
	}
	return img, nil
}

func emptySnapshot() *session.Snapshot {
	return &session.Snapshot{
		Cursor:         models.OriginalCursor,
		ShowThumbnails: true,
		Mode:           models.ModeEdit,
	}
}
