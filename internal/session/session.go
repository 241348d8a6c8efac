// Package session holds the in-memory workspace state: the image set, the
// selection, the reference set, and the history cursor. It is the single
// source of truth for what bytes are currently visible. Persistence is
// driven by an external observer via OnChange, not by this package.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chenyangcun/aiedit/internal/models"
)

var (
	// ErrImageNotFound is returned when an operation names an unknown image id.
	ErrImageNotFound = errors.New("image not found")

	// ErrEditInFlight is returned when an edit is attempted on an image that
	// already has one running.
	ErrEditInFlight = errors.New("an edit is already in flight for this image")
)

// State is the workspace state. All methods are safe for concurrent use;
// the autosaver observes changes from its own goroutine.
type State struct {
	mu sync.Mutex

	images []*models.Image
	index  map[string]*models.Image

	selectedID     string
	referenceIDs   []string
	prompt         string
	cursor         int
	showThumbnails bool
	mode           models.Mode

	inFlight map[string]bool
	onChange func()
}

// New creates an empty workspace state.
func New() *State {
	return &State{
		index:          make(map[string]*models.Image),
		cursor:         models.OriginalCursor,
		showThumbnails: true,
		mode:           models.ModeEdit,
		inFlight:       make(map[string]bool),
	}
}

// SetOnChange registers a callback invoked after every state mutation.
// The callback runs outside the state lock.
func (s *State) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// notify runs the change callback. Must be called without holding mu.
func (s *State) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// AddImage appends a new image to the set. If nothing is selected, the new
// image becomes the selection with the cursor at its original.
func (s *State) AddImage(img *models.Image) {
	s.mu.Lock()
	s.images = append(s.images, img)
	s.index[img.ID] = img
	if s.selectedID == "" {
		s.selectedID = img.ID
		s.cursor = models.OriginalCursor
	}
	s.mu.Unlock()
	s.notify()
}

// Images returns the images in insertion order. The returned slice is a
// copy; the images themselves are shared.
func (s *State) Images() []*models.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Image, len(s.images))
	copy(out, s.images)
	return out
}

// Get returns the image with the given id, or nil.
func (s *State) Get(id string) *models.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index[id]
}

// Selected returns the currently selected image, or nil.
func (s *State) Selected() *models.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == "" {
		return nil
	}
	return s.index[s.selectedID]
}

// SelectedID returns the selected image id, or "".
func (s *State) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// Cursor returns the active history cursor (-1 = original).
func (s *State) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// ResolveVisible returns the bytes and mime type currently displayed for
// the selected image, and false if no image is selected. Out-of-range
// cursors fall back to the original rather than failing.
func (s *State) ResolveVisible() ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img := s.index[s.selectedID]
	if img == nil {
		return nil, "", false
	}
	data, mime := img.Resolve(s.cursor)
	return data, mime, true
}

// AppendEdit truncates the image's history to cursor+1 entries (all history
// when cursor is -1), appends the new entry, and returns the new cursor,
// which points at the appended tail. This is the sole mutation path for
// edits. If the image is the current selection, the active cursor advances.
func (s *State) AppendEdit(imageID string, cursor int, data []byte, mimeType, label string) (int, error) {
	s.mu.Lock()
	img := s.index[imageID]
	if img == nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrImageNotFound, imageID)
	}

	base := []models.HistoryEntry{}
	if cursor > models.OriginalCursor && cursor < len(img.History) {
		base = img.History[:cursor+1]
	} else if cursor >= len(img.History) {
		base = img.History
	}
	img.History = append(base[:len(base):len(base)], models.HistoryEntry{
		Data:     data,
		MimeType: mimeType,
		Label:    label,
	})

	newCursor := len(img.History) - 1
	if s.selectedID == imageID {
		s.cursor = newCursor
	}
	s.mu.Unlock()
	s.notify()
	return newCursor, nil
}

// DeleteHistoryEntry removes the entry at index and everything after it,
// returning the new cursor (index-1).
func (s *State) DeleteHistoryEntry(imageID string, index int) (int, error) {
	s.mu.Lock()
	img := s.index[imageID]
	if img == nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrImageNotFound, imageID)
	}
	if index < 0 || index >= len(img.History) {
		s.mu.Unlock()
		return 0, fmt.Errorf("history index %d out of range [0,%d)", index, len(img.History))
	}

	img.History = img.History[:index]
	newCursor := index - 1
	if s.selectedID == imageID {
		s.cursor = newCursor
	}
	s.mu.Unlock()
	s.notify()
	return newCursor, nil
}

// ResetHistory clears the image's history; the cursor returns to the original.
func (s *State) ResetHistory(imageID string) error {
	s.mu.Lock()
	img := s.index[imageID]
	if img == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrImageNotFound, imageID)
	}
	img.History = nil
	if s.selectedID == imageID {
		s.cursor = models.OriginalCursor
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// DeleteImage removes the image from the set. Its id is pruned from the
// reference set as part of the same mutation. If it was selected, the
// selection moves to the first remaining image (or none) and the cursor
// resets to the original.
func (s *State) DeleteImage(imageID string) error {
	s.mu.Lock()
	if s.index[imageID] == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrImageNotFound, imageID)
	}

	delete(s.index, imageID)
	for i, img := range s.images {
		if img.ID == imageID {
			s.images = append(s.images[:i], s.images[i+1:]...)
			break
		}
	}
	s.referenceIDs = removeString(s.referenceIDs, imageID)

	if s.selectedID == imageID {
		s.selectedID = ""
		if len(s.images) > 0 {
			s.selectedID = s.images[0].ID
		}
		s.cursor = models.OriginalCursor
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// ToggleReference adds or removes the image from the reference set and
// reports whether it is now a member. Any id present in the image set may
// be referenced; stricter rules are UI policy.
func (s *State) ToggleReference(imageID string) (bool, error) {
	s.mu.Lock()
	if s.index[imageID] == nil {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrImageNotFound, imageID)
	}

	var member bool
	if containsString(s.referenceIDs, imageID) {
		s.referenceIDs = removeString(s.referenceIDs, imageID)
	} else {
		s.referenceIDs = append(s.referenceIDs, imageID)
		member = true
	}
	s.mu.Unlock()
	s.notify()
	return member, nil
}

// ReferenceIDs returns the reference set in insertion order.
func (s *State) ReferenceIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.referenceIDs...)
}

// ReferenceImages returns the referenced images in insertion order.
func (s *State) ReferenceImages() []*models.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Image
	for _, id := range s.referenceIDs {
		if img := s.index[id]; img != nil {
			out = append(out, img)
		}
	}
	return out
}

// Select makes the image the current selection, moves the cursor to its
// history tail, and clears the reference set.
func (s *State) Select(imageID string) error {
	s.mu.Lock()
	img := s.index[imageID]
	if img == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrImageNotFound, imageID)
	}
	s.selectedID = imageID
	s.cursor = len(img.History) - 1
	s.referenceIDs = nil
	s.mode = models.ModeEdit
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetCursor moves the history cursor of the selected image. -1 selects the
// original.
func (s *State) SetCursor(index int) error {
	s.mu.Lock()
	img := s.index[s.selectedID]
	if img == nil {
		s.mu.Unlock()
		return errors.New("no image selected")
	}
	if index < models.OriginalCursor || index >= len(img.History) {
		s.mu.Unlock()
		return fmt.Errorf("history index %d out of range [-1,%d)", index, len(img.History))
	}
	s.cursor = index
	s.mu.Unlock()
	s.notify()
	return nil
}

// Prompt returns the current prompt text.
func (s *State) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

// SetPrompt updates the prompt text.
func (s *State) SetPrompt(prompt string) {
	s.mu.Lock()
	changed := s.prompt != prompt
	s.prompt = prompt
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// Mode returns the active mode.
func (s *State) Mode() models.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches modes. Leaving edit mode clears the selection.
func (s *State) SetMode(mode models.Mode) {
	s.mu.Lock()
	if mode != models.ModeEdit {
		s.selectedID = ""
		s.cursor = models.OriginalCursor
	}
	s.mode = mode
	s.mu.Unlock()
	s.notify()
}

// ShowThumbnails returns the thumbnail display flag.
func (s *State) ShowThumbnails() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showThumbnails
}

// SetShowThumbnails updates the thumbnail display flag.
func (s *State) SetShowThumbnails(show bool) {
	s.mu.Lock()
	s.showThumbnails = show
	s.mu.Unlock()
	s.notify()
}

// ReplaceAll swaps in an entirely new image set, as draft import does. The
// first image becomes the selection with the cursor at its history tail;
// the reference set is cleared.
func (s *State) ReplaceAll(images []*models.Image) {
	s.mu.Lock()
	s.images = images
	s.index = make(map[string]*models.Image, len(images))
	for _, img := range images {
		s.index[img.ID] = img
	}
	s.referenceIDs = nil
	if len(images) > 0 {
		s.selectedID = images[0].ID
		s.cursor = len(images[0].History) - 1
		s.mode = models.ModeEdit
	} else {
		s.selectedID = ""
		s.cursor = models.OriginalCursor
	}
	s.mu.Unlock()
	s.notify()
}

// BeginEdit marks the image as having an edit in flight. At most one edit
// may run against an image at a time.
func (s *State) BeginEdit(imageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[imageID] {
		return ErrEditInFlight
	}
	s.inFlight[imageID] = true
	return nil
}

// EndEdit clears the in-flight mark set by BeginEdit.
func (s *State) EndEdit(imageID string) {
	s.mu.Lock()
	delete(s.inFlight, imageID)
	s.mu.Unlock()
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
