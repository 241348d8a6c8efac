package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/chenyangcun/aiedit/internal/metastore"
)

// GCResult contains the outcome of a garbage collection run.
type GCResult struct {
	BlobsScanned   int
	BlobsDeleted   int
	ReferencedKeys int
}

// GarbageCollect removes blob store entries not referenced by the current
// metadata record. Keys named by the record are never deleted. A missing
// record means nothing is referenced and every blob is collectable.
func (p *Pipeline) GarbageCollect(ctx context.Context) (*GCResult, error) {
	result := &GCResult{}

	referenced := make(map[string]bool)
	rec, err := p.meta.Get(ctx)
	switch {
	case errors.Is(err, metastore.ErrNotFound):
		// No record, no references.
	case err != nil:
		return nil, fmt.Errorf("load record: %w", err)
	default:
		for _, img := range rec.Images {
			referenced[img.OriginalSrcKey] = true
			for i := range img.History {
				referenced[img.History[i].SrcKey] = true
			}
		}
	}
	result.ReferencedKeys = len(referenced)

	keys, err := p.blobs.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blob keys: %w", err)
	}
	result.BlobsScanned = len(keys)

	for _, key := range keys {
		if referenced[key] {
			continue
		}
		if err := p.blobs.Delete(ctx, key); err != nil {
			p.logger.Warn("gc: failed to delete blob", "key", key, "error", err)
			continue
		}
		result.BlobsDeleted++
	}

	p.logger.Info("gc complete",
		"scanned", result.BlobsScanned,
		"referenced", result.ReferencedKeys,
		"deleted", result.BlobsDeleted,
	)

	return result, nil
}
