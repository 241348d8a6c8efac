package session

import "github.com/chenyangcun/aiedit/internal/models"

// Snapshot is a deep copy of the workspace state, taken atomically so the
// persistence pipeline can dehydrate without racing later edits.
type Snapshot struct {
	Images            []*models.Image
	SelectedImageID   string
	ReferenceImageIDs []string
	Prompt            string
	Cursor            int
	ShowThumbnails    bool
	Mode              models.Mode
}

// Snapshot captures the current state.
func (s *State) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		Images:            make([]*models.Image, len(s.images)),
		SelectedImageID:   s.selectedID,
		ReferenceImageIDs: append([]string(nil), s.referenceIDs...),
		Prompt:            s.prompt,
		Cursor:            s.cursor,
		ShowThumbnails:    s.showThumbnails,
		Mode:              s.mode,
	}
	for i, img := range s.images {
		snap.Images[i] = img.Clone()
	}
	return snap
}

// Restore replaces the entire state with the snapshot contents. Used by the
// persistence pipeline on startup; does not fire the change callback, so a
// fresh load does not immediately re-save itself.
func (s *State) Restore(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.images = snap.Images
	s.index = make(map[string]*models.Image, len(snap.Images))
	for _, img := range snap.Images {
		s.index[img.ID] = img
	}
	s.selectedID = snap.SelectedImageID
	s.referenceIDs = append([]string(nil), snap.ReferenceImageIDs...)
	s.prompt = snap.Prompt
	s.cursor = snap.Cursor
	s.showThumbnails = snap.ShowThumbnails
	s.mode = snap.Mode

	// A stale selection (e.g. the image was dropped during rehydration)
	// falls back to the first image.
	if s.selectedID != "" && s.index[s.selectedID] == nil {
		s.selectedID = ""
		s.cursor = models.OriginalCursor
		if len(s.images) > 0 {
			s.selectedID = s.images[0].ID
		}
	}
	// Prune references to images that no longer exist.
	kept := s.referenceIDs[:0]
	for _, id := range s.referenceIDs {
		if s.index[id] != nil {
			kept = append(kept, id)
		}
	}
	s.referenceIDs = kept
}
