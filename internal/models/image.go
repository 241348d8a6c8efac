// Package models defines the core data structures used throughout aiedit
// including images, edit history, and the persisted workspace record.
package models

// HistoryEntry is the output of one applied edit.
type HistoryEntry struct {
	Data     []byte `json:"src"`
	MimeType string `json:"mimeType"`
	Label    string `json:"prompt"`
}

// Image is one imported, generated, or composited picture together with its
// linear edit history. OriginalData and OriginalMimeType are immutable for
// the life of the image; every mutation appends to History.
type Image struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	OriginalData     []byte         `json:"originalSrc"`
	OriginalMimeType string         `json:"originalMimeType"`
	History          []HistoryEntry `json:"history"`
}

// OriginalCursor selects the immutable base version of an image.
const OriginalCursor = -1

// Resolve returns the bytes and mime type visible at the given history
// cursor. Cursor -1 selects the original; any out-of-range cursor also
// falls back to the original rather than failing.
func (img *Image) Resolve(cursor int) ([]byte, string) {
	if cursor < 0 || cursor >= len(img.History) {
		return img.OriginalData, img.OriginalMimeType
	}
	entry := img.History[cursor]
	return entry.Data, entry.MimeType
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	c := &Image{
		ID:               img.ID,
		Name:             img.Name,
		OriginalData:     append([]byte(nil), img.OriginalData...),
		OriginalMimeType: img.OriginalMimeType,
	}
	if img.History != nil {
		c.History = make([]HistoryEntry, len(img.History))
		for i, h := range img.History {
			c.History[i] = HistoryEntry{
				Data:     append([]byte(nil), h.Data...),
				MimeType: h.MimeType,
				Label:    h.Label,
			}
		}
	}
	return c
}
