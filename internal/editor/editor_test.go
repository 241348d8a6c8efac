package editor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenyangcun/aiedit/internal/gemini"
	"github.com/chenyangcun/aiedit/internal/models"
	"github.com/chenyangcun/aiedit/internal/session"
	"github.com/chenyangcun/aiedit/internal/transform"
)

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testImage(t *testing.T, id string, w, h int) *models.Image {
	t.Helper()
	return &models.Image{
		ID:               id,
		Name:             id + ".png",
		OriginalData:     pngBytes(t, w, h, color.NRGBA{R: 128, G: 64, B: 32, A: 255}),
		OriginalMimeType: "image/png",
	}
}

func newTestEditor(t *testing.T) (*Editor, *session.State, *gemini.MockClient) {
	t.Helper()
	state := session.New()
	mock := gemini.NewMockClient()
	return New(state, mock, nil), state, mock
}

func TestEditValidation(t *testing.T) {
	ed, state, _ := newTestEditor(t)

	t.Run("requires a prompt", func(t *testing.T) {
		_, err := ed.Edit(context.Background(), "")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ReasonEmptyPrompt, verr.Reason)
	})

	t.Run("requires a selection", func(t *testing.T) {
		_, err := ed.Edit(context.Background(), "make it blue")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ReasonNoSelection, verr.Reason)
	})

	t.Run("rejects a second edit in flight", func(t *testing.T) {
		state.AddImage(testImage(t, "cat", 2, 2))
		require.NoError(t, state.BeginEdit("cat"))
		defer state.EndEdit("cat")

		_, err := ed.Edit(context.Background(), "make it blue")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ReasonEditInFlight, verr.Reason)
	})
}

func TestEditAppendsHistory(t *testing.T) {
	ed, state, mock := newTestEditor(t)
	state.AddImage(testImage(t, "cat", 2, 2))
	state.AddImage(testImage(t, "dog", 2, 2))
	_, err := state.ToggleReference("dog")
	require.NoError(t, err)

	cursor, err := ed.Edit(context.Background(), "add a hat")
	require.NoError(t, err)
	assert.Equal(t, 0, cursor)

	// Visible bytes of the selection plus one reference original.
	require.Len(t, mock.EditImageCounts, 1)
	assert.Equal(t, 2, mock.EditImageCounts[0])
	assert.Equal(t, []string{"add a hat"}, mock.EditCalls)

	img := state.Get("cat")
	require.Len(t, img.History, 1)
	assert.Equal(t, "add a hat", img.History[0].Label)
	assert.Equal(t, "add a hat", state.Prompt())
	assert.Equal(t, 0, state.Cursor())
}

func TestEditBackendFailureLeavesHistory(t *testing.T) {
	ed, state, mock := newTestEditor(t)
	state.AddImage(testImage(t, "cat", 2, 2))
	mock.Err = &gemini.BackendError{Kind: gemini.KindRateLimited}

	_, err := ed.Edit(context.Background(), "add a hat")
	var berr *gemini.BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, gemini.KindRateLimited, berr.Kind)
	assert.Empty(t, state.Get("cat").History)

	// The in-flight mark is released on failure.
	require.NoError(t, state.BeginEdit("cat"))
	state.EndEdit("cat")
}

func TestGenerate(t *testing.T) {
	ed, state, mock := newTestEditor(t)

	t.Run("requires a prompt", func(t *testing.T) {
		_, err := ed.Generate(context.Background(), "")
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("adds and selects the new image", func(t *testing.T) {
		img, err := ed.Generate(context.Background(), "a lighthouse at dusk")
		require.NoError(t, err)
		assert.Equal(t, "Generated: a lighthouse at dusk", img.Name)
		assert.Equal(t, []byte("generated"), img.OriginalData)
		assert.Equal(t, img.ID, state.SelectedID())
		assert.Equal(t, models.ModeEdit, state.Mode())
		assert.Equal(t, models.OriginalCursor, state.Cursor())
		assert.Equal(t, []string{"a lighthouse at dusk"}, mock.GenerateCalls)
	})

	t.Run("truncates long prompts in the name", func(t *testing.T) {
		img, err := ed.Generate(context.Background(), "a very long prompt that goes on well past thirty characters")
		require.NoError(t, err)
		assert.Equal(t, "Generated: a very long prompt that goes o...", img.Name)
	})

	t.Run("truncates on rune boundaries", func(t *testing.T) {
		img, err := ed.Generate(context.Background(), strings.Repeat("灯", 35))
		require.NoError(t, err)
		assert.Equal(t, "Generated: "+strings.Repeat("灯", 30)+"...", img.Name)
		assert.True(t, utf8.ValidString(img.Name))
	})
}

func TestVideo(t *testing.T) {
	ed, state, mock := newTestEditor(t)
	img := testImage(t, "cat", 2, 2)
	state.AddImage(img)

	var stages []string
	res, err := ed.Video(context.Background(), "make it move", func(msg string) {
		stages = append(stages, msg)
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("video"), res.Data)
	assert.Equal(t, "video/mp4", res.MimeType)
	assert.NotEmpty(t, stages)
	assert.Equal(t, []string{"make it move"}, mock.VideoCalls)

	// Video never enters history, and mode video drops the selection.
	assert.Empty(t, img.History)
	assert.Equal(t, models.ModeVideo, state.Mode())
	assert.Equal(t, "", state.SelectedID())
}

func TestGrid(t *testing.T) {
	t.Run("rejects wrong image count", func(t *testing.T) {
		ed, state, _ := newTestEditor(t)
		state.AddImage(testImage(t, "one", 2, 2))

		_, err := ed.Grid()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ReasonWrongGridCount, verr.Reason)
		assert.Len(t, state.Images(), 1)
	})

	t.Run("combines four distinct images", func(t *testing.T) {
		ed, state, _ := newTestEditor(t)
		for _, id := range []string{"a", "b", "c", "d"} {
			state.AddImage(testImage(t, id, 2, 2))
		}
		for _, id := range []string{"b", "c", "d"} {
			_, err := state.ToggleReference(id)
			require.NoError(t, err)
		}

		img, err := ed.Grid()
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.OriginalMimeType)
		assert.Equal(t, img.ID, state.SelectedID())
		assert.Len(t, state.Images(), 5)

		decoded, err := png.Decode(bytes.NewReader(img.OriginalData))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 4, 4), decoded.Bounds())
	})
}

func TestTransformOperations(t *testing.T) {
	ed, state, _ := newTestEditor(t)
	state.AddImage(testImage(t, "photo", 4, 2))

	cursor, err := ed.Rotate(90)
	require.NoError(t, err)
	assert.Equal(t, 0, cursor)

	img := state.Get("photo")
	require.Len(t, img.History, 1)
	assert.Equal(t, "Rotate right", img.History[0].Label)

	decoded, err := png.Decode(bytes.NewReader(img.History[0].Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 4), decoded.Bounds())

	cursor, err = ed.Filter(transform.FilterGrayscale)
	require.NoError(t, err)
	assert.Equal(t, 1, cursor)
	assert.Equal(t, "Filter: grayscale", img.History[1].Label)

	_, err = ed.Crop(image.Rect(0, 0, 1, 1))
	require.NoError(t, err)
	require.Len(t, img.History, 3)

	t.Run("transform failure leaves history unchanged", func(t *testing.T) {
		state.AddImage(&models.Image{
			ID:               "broken",
			Name:             "broken.png",
			OriginalData:     []byte("not an image"),
			OriginalMimeType: "image/png",
		})
		require.NoError(t, state.Select("broken"))

		_, err := ed.Flip(transform.FlipHorizontal)
		require.Error(t, err)
		assert.True(t, errors.Is(err, transform.ErrUnsupportedImage))
		assert.Empty(t, state.Get("broken").History)
	})
}

func TestImportFiles(t *testing.T) {
	ed, state, _ := newTestEditor(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.png")
	require.NoError(t, os.WriteFile(good, pngBytes(t, 2, 2, color.NRGBA{A: 255}), 0o644))
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("plain text, not pixels"), 0o644))
	missing := filepath.Join(dir, "gone.png")

	added, failed := ed.ImportFiles([]string{good, text, missing})
	require.Len(t, added, 1)
	assert.Equal(t, "good.png", added[0].Name)
	assert.Equal(t, "image/png", added[0].OriginalMimeType)
	assert.Len(t, failed, 2)

	// First import selects the new image.
	assert.Equal(t, added[0].ID, state.SelectedID())
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "edited-photo-v3.png", ExportName("photo.png", 2, "image/png"))
	assert.Equal(t, "edited-photo-v0.jpeg", ExportName("photo.old.jpg", -1, "image/jpeg"))
	assert.Equal(t, "edited-scan-v1.png", ExportName("scan", 0, "application/octet-stream"))
}
