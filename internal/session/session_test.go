package session

import (
	"fmt"
	"testing"

	"github.com/chenyangcun/aiedit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImage(id string, historyLen int) *models.Image {
	img := &models.Image{
		ID:               id,
		Name:             id + ".png",
		OriginalData:     []byte("original-" + id),
		OriginalMimeType: "image/png",
	}
	for i := 0; i < historyLen; i++ {
		img.History = append(img.History, models.HistoryEntry{
			Data:     []byte(fmt.Sprintf("%s-v%d", id, i)),
			MimeType: "image/png",
			Label:    fmt.Sprintf("edit %d", i),
		})
	}
	return img
}

func TestAddImage_FirstBecomesSelection(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 0))
	s.AddImage(newImage("b", 0))

	assert.Equal(t, "a", s.SelectedID())
	assert.Equal(t, models.OriginalCursor, s.Cursor())
	assert.Len(t, s.Images(), 2)
}

func TestResolveVisible(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 2))

	// Cursor at original.
	data, mime, ok := s.ResolveVisible()
	require.True(t, ok)
	assert.Equal(t, []byte("original-a"), data)
	assert.Equal(t, "image/png", mime)

	// Cursor in history.
	require.NoError(t, s.SetCursor(1))
	data, _, ok = s.ResolveVisible()
	require.True(t, ok)
	assert.Equal(t, []byte("a-v1"), data)
}

func TestResolveVisible_NoSelection(t *testing.T) {
	s := New()
	_, _, ok := s.ResolveVisible()
	assert.False(t, ok)
}

func TestResolve_OutOfRangeFallsBackToOriginal(t *testing.T) {
	img := newImage("a", 3)

	for _, cursor := range []int{-1, -5, 3, 99} {
		data, mime := img.Resolve(cursor)
		assert.Equal(t, []byte("original-a"), data, "cursor %d", cursor)
		assert.Equal(t, "image/png", mime, "cursor %d", cursor)
	}

	data, _ := img.Resolve(2)
	assert.Equal(t, []byte("a-v2"), data)
}

func TestAppendEdit_TruncatesFromMidHistory(t *testing.T) {
	// H=5, c=2 -> new history length 4, new cursor 3.
	s := New()
	s.AddImage(newImage("a", 5))
	require.NoError(t, s.SetCursor(2))

	newCursor, err := s.AppendEdit("a", 2, []byte("new"), "image/png", "sepia")
	require.NoError(t, err)

	img := s.Get("a")
	assert.Equal(t, 3, newCursor)
	assert.Equal(t, 3, s.Cursor())
	require.Len(t, img.History, 4)
	assert.Equal(t, []byte("a-v0"), img.History[0].Data)
	assert.Equal(t, []byte("a-v2"), img.History[2].Data)
	assert.Equal(t, []byte("new"), img.History[3].Data)
	assert.Equal(t, "sepia", img.History[3].Label)
}

func TestAppendEdit_FromOriginalDropsAllHistory(t *testing.T) {
	// H=5, c=-1 -> new history length 1, new cursor 0.
	s := New()
	s.AddImage(newImage("a", 5))

	newCursor, err := s.AppendEdit("a", -1, []byte("new"), "image/png", "rotate")
	require.NoError(t, err)

	assert.Equal(t, 0, newCursor)
	require.Len(t, s.Get("a").History, 1)
	assert.Equal(t, []byte("new"), s.Get("a").History[0].Data)
}

func TestAppendEdit_AtTailAppends(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 2))

	newCursor, err := s.AppendEdit("a", 1, []byte("new"), "image/png", "crop")
	require.NoError(t, err)

	assert.Equal(t, 2, newCursor)
	assert.Len(t, s.Get("a").History, 3)
}

func TestAppendEdit_UnknownImage(t *testing.T) {
	s := New()
	_, err := s.AppendEdit("nope", -1, []byte("x"), "image/png", "l")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestDeleteHistoryEntry(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 5))
	require.NoError(t, s.SetCursor(4))

	newCursor, err := s.DeleteHistoryEntry("a", 2)
	require.NoError(t, err)

	assert.Equal(t, 1, newCursor)
	assert.Equal(t, 1, s.Cursor())
	require.Len(t, s.Get("a").History, 2)
	assert.Equal(t, []byte("a-v1"), s.Get("a").History[1].Data)
}

func TestDeleteHistoryEntry_FirstEntryReturnsToOriginal(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 2))

	newCursor, err := s.DeleteHistoryEntry("a", 0)
	require.NoError(t, err)

	assert.Equal(t, models.OriginalCursor, newCursor)
	assert.Empty(t, s.Get("a").History)
}

func TestDeleteHistoryEntry_OutOfRange(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 2))

	_, err := s.DeleteHistoryEntry("a", 2)
	assert.Error(t, err)
	_, err = s.DeleteHistoryEntry("a", -1)
	assert.Error(t, err)
}

func TestResetHistory(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 3))
	require.NoError(t, s.SetCursor(2))

	require.NoError(t, s.ResetHistory("a"))

	assert.Empty(t, s.Get("a").History)
	assert.Equal(t, models.OriginalCursor, s.Cursor())
}

func TestDeleteImage_PrunesReferenceSet(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 0))
	s.AddImage(newImage("b", 0))
	s.AddImage(newImage("c", 0))

	_, err := s.ToggleReference("b")
	require.NoError(t, err)
	_, err = s.ToggleReference("c")
	require.NoError(t, err)

	require.NoError(t, s.DeleteImage("b"))

	assert.Equal(t, []string{"c"}, s.ReferenceIDs())
	assert.Nil(t, s.Get("b"))
	assert.Len(t, s.Images(), 2)
}

func TestDeleteImage_SelectionMovesToFirstRemaining(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 2))
	s.AddImage(newImage("b", 0))
	require.NoError(t, s.SetCursor(1))

	require.NoError(t, s.DeleteImage("a"))

	assert.Equal(t, "b", s.SelectedID())
	assert.Equal(t, models.OriginalCursor, s.Cursor())

	require.NoError(t, s.DeleteImage("b"))
	assert.Equal(t, "", s.SelectedID())
}

func TestToggleReference(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 0))
	s.AddImage(newImage("b", 0))

	member, err := s.ToggleReference("b")
	require.NoError(t, err)
	assert.True(t, member)
	assert.Equal(t, []string{"b"}, s.ReferenceIDs())

	member, err = s.ToggleReference("b")
	require.NoError(t, err)
	assert.False(t, member)
	assert.Empty(t, s.ReferenceIDs())

	_, err = s.ToggleReference("zz")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestSelect_MovesCursorToTailAndClearsReferences(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 0))
	s.AddImage(newImage("b", 3))
	_, err := s.ToggleReference("b")
	require.NoError(t, err)

	require.NoError(t, s.Select("b"))

	assert.Equal(t, "b", s.SelectedID())
	assert.Equal(t, 2, s.Cursor())
	assert.Empty(t, s.ReferenceIDs())
}

func TestSetMode_LeavingEditClearsSelection(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 0))

	s.SetMode(models.ModeGenerate)

	assert.Equal(t, models.ModeGenerate, s.Mode())
	assert.Equal(t, "", s.SelectedID())
}

func TestReplaceAll(t *testing.T) {
	s := New()
	s.AddImage(newImage("old", 1))
	_, err := s.ToggleReference("old")
	require.NoError(t, err)

	s.ReplaceAll([]*models.Image{newImage("x", 2), newImage("y", 0)})

	assert.Equal(t, "x", s.SelectedID())
	assert.Equal(t, 1, s.Cursor())
	assert.Empty(t, s.ReferenceIDs())
	assert.Nil(t, s.Get("old"))

	s.ReplaceAll(nil)
	assert.Equal(t, "", s.SelectedID())
	assert.Equal(t, models.OriginalCursor, s.Cursor())
}

func TestBeginEdit_EnforcesSingleInFlight(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 0))
	s.AddImage(newImage("b", 0))

	require.NoError(t, s.BeginEdit("a"))
	assert.ErrorIs(t, s.BeginEdit("a"), ErrEditInFlight)

	// A different image is unaffected.
	require.NoError(t, s.BeginEdit("b"))

	s.EndEdit("a")
	require.NoError(t, s.BeginEdit("a"))
}

func TestEndToEndEditScenario(t *testing.T) {
	// import 1 file -> rotate -> filter -> history 2, cursor 1 ->
	// cursor 0 -> filter -> history 2 with entry 1 replaced, cursor 1.
	s := New()
	s.AddImage(newImage("photo", 0))

	cursor, err := s.AppendEdit("photo", s.Cursor(), []byte("rotated"), "image/png", "Rotate right")
	require.NoError(t, err)
	assert.Equal(t, 0, cursor)

	cursor, err = s.AppendEdit("photo", cursor, []byte("gray"), "image/png", "Grayscale filter")
	require.NoError(t, err)
	assert.Equal(t, 1, cursor)
	assert.Len(t, s.Get("photo").History, 2)

	require.NoError(t, s.SetCursor(0))

	cursor, err = s.AppendEdit("photo", s.Cursor(), []byte("sepia"), "image/png", "Sepia filter")
	require.NoError(t, err)

	img := s.Get("photo")
	assert.Equal(t, 1, cursor)
	require.Len(t, img.History, 2)
	assert.Equal(t, []byte("rotated"), img.History[0].Data)
	assert.Equal(t, []byte("sepia"), img.History[1].Data)
}

func TestOnChange_FiresOnMutations(t *testing.T) {
	s := New()
	var calls int
	s.SetOnChange(func() { calls++ })

	s.AddImage(newImage("a", 0))
	_, err := s.AppendEdit("a", -1, []byte("x"), "image/png", "l")
	require.NoError(t, err)
	s.SetPrompt("hello")
	s.SetPrompt("hello") // unchanged, no notification

	assert.Equal(t, 3, calls)
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 2))
	s.AddImage(newImage("b", 0))
	_, err := s.ToggleReference("b")
	require.NoError(t, err)
	s.SetPrompt("sunset")
	require.NoError(t, s.SetCursor(1))

	snap := s.Snapshot()

	restored := New()
	restored.Restore(snap)

	assert.Equal(t, s.SelectedID(), restored.SelectedID())
	assert.Equal(t, s.Cursor(), restored.Cursor())
	assert.Equal(t, s.ReferenceIDs(), restored.ReferenceIDs())
	assert.Equal(t, s.Prompt(), restored.Prompt())
	require.Len(t, restored.Images(), 2)
	assert.Equal(t, s.Get("a"), restored.Get("a"))
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	s := New()
	s.AddImage(newImage("a", 1))

	snap := s.Snapshot()
	_, err := s.AppendEdit("a", 0, []byte("later"), "image/png", "l")
	require.NoError(t, err)

	require.Len(t, snap.Images[0].History, 1)
	assert.Equal(t, []byte("a-v0"), snap.Images[0].History[0].Data)
}

func TestRestore_DropsStaleSelectionAndReferences(t *testing.T) {
	s := New()
	s.Restore(&Snapshot{
		Images:            []*models.Image{newImage("kept", 0)},
		SelectedImageID:   "dropped",
		ReferenceImageIDs: []string{"kept", "gone"},
		Cursor:            3,
	})

	assert.Equal(t, "kept", s.SelectedID())
	assert.Equal(t, models.OriginalCursor, s.Cursor())
	assert.Equal(t, []string{"kept"}, s.ReferenceIDs())
}
