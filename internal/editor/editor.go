// Package editor is the gateway every edit-producing operation goes
// through. It validates preconditions, resolves the visible bytes,
// invokes exactly one external transform or model call, and funnels
// successful results into the session history. History never grows on
// a failed operation.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chenyangcun/aiedit/internal/gemini"
	"github.com/chenyangcun/aiedit/internal/models"
	"github.com/chenyangcun/aiedit/internal/session"
	"github.com/chenyangcun/aiedit/internal/transform"
)

// Editor mediates between the workspace state and the transform/model
// backends.
type Editor struct {
	state  *session.State
	client gemini.ClientInterface
	logger *slog.Logger
}

// New creates an Editor over the given state and model client.
func New(state *session.State, client gemini.ClientInterface, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{state: state, client: client, logger: logger}
}

// State exposes the underlying workspace state.
func (e *Editor) State() *session.State {
	return e.state
}

// apply resolves the selected image's visible bytes, runs fn on them,
// and appends the result as a history entry. This is the single funnel
// for pixel transforms.
func (e *Editor) apply(label string, fn func(data []byte, mimeType string) (*transform.Result, error)) (int, error) {
	img := e.state.Selected()
	if img == nil {
		return 0, errNoSelection()
	}
	if err := e.state.BeginEdit(img.ID); err != nil {
		return 0, errEditInFlight()
	}
	defer e.state.EndEdit(img.ID)

	cursor := e.state.Cursor()
	data, mimeType, ok := e.state.ResolveVisible()
	if !ok {
		return 0, errNoSelection()
	}

	res, err := fn(data, mimeType)
	if err != nil {
		return 0, fmt.Errorf("edit failed: %w", err)
	}
	return e.state.AppendEdit(img.ID, cursor, res.Data, res.MimeType, label)
}

// Edit sends the visible bytes plus the reference images' original
// bytes to the editing model and appends the returned image.
func (e *Editor) Edit(ctx context.Context, prompt string) (int, error) {
	if prompt == "" {
		return 0, errEmptyPrompt()
	}
	img := e.state.Selected()
	if img == nil {
		return 0, errNoSelection()
	}
	if err := e.state.BeginEdit(img.ID); err != nil {
		return 0, errEditInFlight()
	}
	defer e.state.EndEdit(img.ID)

	e.state.SetPrompt(prompt)
	cursor := e.state.Cursor()
	data, mimeType, _ := e.state.ResolveVisible()

	parts := []gemini.ImagePart{{Data: data, MimeType: mimeType}}
	for _, ref := range e.state.ReferenceImages() {
		if ref.ID == img.ID {
			continue
		}
		parts = append(parts, gemini.ImagePart{
			Data:     ref.OriginalData,
			MimeType: ref.OriginalMimeType,
		})
	}

	result, err := e.client.EditImage(ctx, prompt, parts)
	if err != nil {
		return 0, err
	}
	return e.state.AppendEdit(img.ID, cursor, result.Data, result.MimeType, prompt)
}

// Generate creates a brand-new image from a text prompt, adds it to the
// workspace, and selects it.
func (e *Editor) Generate(ctx context.Context, prompt string) (*models.Image, error) {
	if prompt == "" {
		return nil, errEmptyPrompt()
	}
	e.state.SetPrompt(prompt)
	e.state.SetMode(models.ModeGenerate)

	result, err := e.client.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, err
	}

	name := prompt
	if runes := []rune(name); len(runes) > 30 {
		name = string(runes[:30]) + "..."
	}
	img := &models.Image{
		ID:               fmt.Sprintf("generated-%d", time.Now().UnixMilli()),
		Name:             "Generated: " + name,
		OriginalData:     result.Data,
		OriginalMimeType: result.MimeType,
	}
	e.state.AddImage(img)
	if err := e.state.Select(img.ID); err != nil {
		return nil, err
	}
	return img, nil
}

// Video generates a video clip from the prompt, seeding the first frame
// with the selected image's original bytes when one is selected. The
// result never enters history; the selection is cleared afterwards.
func (e *Editor) Video(ctx context.Context, prompt string, progress gemini.ProgressFunc) (*gemini.VideoResult, error) {
	if prompt == "" {
		return nil, errEmptyPrompt()
	}

	var seed *gemini.ImagePart
	if img := e.state.Selected(); img != nil {
		seed = &gemini.ImagePart{
			Data:     img.OriginalData,
			MimeType: img.OriginalMimeType,
		}
	}

	e.state.SetPrompt(prompt)
	e.state.SetMode(models.ModeVideo)

	return e.client.GenerateVideo(ctx, prompt, seed, progress)
}

// Grid combines the selection and the reference set, four distinct
// images in all, into a new standalone 2x2 composite. The selected
// image contributes its visible bytes; references contribute their
// originals.
func (e *Editor) Grid() (*models.Image, error) {
	selected := e.state.Selected()
	refs := e.state.ReferenceImages()

	seen := make(map[string]bool)
	var sources [][]byte
	if selected != nil {
		seen[selected.ID] = true
		data, _, _ := e.state.ResolveVisible()
		sources = append(sources, data)
	}
	for _, ref := range refs {
		if seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		sources = append(sources, ref.OriginalData)
	}

	if len(sources) != transform.GridSize {
		return nil, &ValidationError{
			Reason:  ReasonWrongGridCount,
			Message: fmt.Sprintf("a 2x2 grid needs exactly %d distinct images (selected plus references), have %d", transform.GridSize, len(sources)),
		}
	}

	res, err := transform.CombineGrid(sources)
	if err != nil {
		return nil, fmt.Errorf("edit failed: %w", err)
	}

	img := &models.Image{
		ID:               "grid-" + uuid.NewString(),
		Name:             "Combined grid",
		OriginalData:     res.Data,
		OriginalMimeType: res.MimeType,
	}
	e.state.AddImage(img)
	if err := e.state.Select(img.ID); err != nil {
		return nil, err
	}
	return img, nil
}

// ExportName builds the default export file name for the visible
// version of an image.
func ExportName(imageName string, cursor int, mimeType string) string {
	base := imageName
	if i := strings.Index(imageName, "."); i >= 0 {
		base = imageName[:i]
	}
	ext := "png"
	if rest, ok := strings.CutPrefix(mimeType, "image/"); ok && rest != "" {
		ext = rest
	}
	return fmt.Sprintf("edited-%s-v%d.%s", base, cursor+1, ext)
}
