package models

import (
	"encoding/json"
	"fmt"
)

// PersistedHistoryEntry is one history entry with its bytes replaced by a
// blob store key.
type PersistedHistoryEntry struct {
	Label  string `json:"prompt"`
	SrcKey string `json:"srcKey"`
}

// PersistedImage mirrors Image but references blob store keys instead of
// carrying inline bytes.
type PersistedImage struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	OriginalSrcKey string                  `json:"originalSrcKey"`
	History        []PersistedHistoryEntry `json:"history"`
}

// PersistedRecord is the lightweight workspace state held in the metadata
// store. Every SrcKey it references must resolve to a blob store entry;
// rehydration drops images whose original key is missing and history
// entries whose key is missing.
type PersistedRecord struct {
	Images             []PersistedImage `json:"images"`
	SelectedImageID    string           `json:"selectedImageId"`
	ReferenceImageIDs  []string         `json:"referenceImageIds"`
	Prompt             string           `json:"prompt"`
	ActiveHistoryIndex int              `json:"activeHistoryIndex"`
	ShowThumbnails     bool             `json:"showThumbnails"`
	Mode               Mode             `json:"mode"`
}

// UnmarshalJSON applies safe defaults for absent fields: cursor -1,
// thumbnails shown, mode edit. Records written by older builds or edited by
// hand still rehydrate to a usable state.
func (r *PersistedRecord) UnmarshalJSON(data []byte) error {
	type alias PersistedRecord
	raw := struct {
		*alias
		ActiveHistoryIndex *int  `json:"activeHistoryIndex"`
		ShowThumbnails     *bool `json:"showThumbnails"`
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.ActiveHistoryIndex = -1
	if raw.ActiveHistoryIndex != nil {
		r.ActiveHistoryIndex = *raw.ActiveHistoryIndex
	}
	r.ShowThumbnails = true
	if raw.ShowThumbnails != nil {
		r.ShowThumbnails = *raw.ShowThumbnails
	}
	if r.Mode == "" {
		r.Mode = ModeEdit
	}
	return nil
}

// OriginalKey returns the blob store key for an image's original bytes.
func OriginalKey(imageID string) string {
	return imageID + "_original"
}

// HistoryKey returns the blob store key for one history entry's bytes.
func HistoryKey(imageID string, index int) string {
	return fmt.Sprintf("%s_history_%d", imageID, index)
}
