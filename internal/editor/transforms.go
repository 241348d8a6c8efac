package editor

import (
	"fmt"
	"image"

	"github.com/chenyangcun/aiedit/internal/transform"
)

// Rotate turns the visible image 90 degrees left or right.
func (e *Editor) Rotate(degrees int) (int, error) {
	label := "Rotate right"
	if degrees < 0 {
		label = "Rotate left"
	}
	return e.apply(label, func(data []byte, mimeType string) (*transform.Result, error) {
		return transform.Rotate(data, mimeType, degrees)
	})
}

// Flip mirrors the visible image.
func (e *Editor) Flip(dir transform.FlipDirection) (int, error) {
	return e.apply(fmt.Sprintf("Flip %s", dir), func(data []byte, mimeType string) (*transform.Result, error) {
		return transform.Flip(data, mimeType, dir)
	})
}

// Filter applies a named color filter to the visible image.
func (e *Editor) Filter(filter transform.Filter) (int, error) {
	return e.apply(fmt.Sprintf("Filter: %s", filter), func(data []byte, mimeType string) (*transform.Result, error) {
		return transform.ApplyFilter(data, mimeType, filter)
	})
}

// Adjust applies brightness, contrast, and saturation percentages.
func (e *Editor) Adjust(adj transform.Adjustments) (int, error) {
	label := fmt.Sprintf("Adjust (brightness %d%%, contrast %d%%, saturation %d%%)",
		adj.Brightness, adj.Contrast, adj.Saturation)
	return e.apply(label, func(data []byte, mimeType string) (*transform.Result, error) {
		return transform.Adjust(data, mimeType, adj)
	})
}

// Crop extracts the given rectangle from the visible image.
func (e *Editor) Crop(rect image.Rectangle) (int, error) {
	label := fmt.Sprintf("Crop %dx%d at (%d,%d)", rect.Dx(), rect.Dy(), rect.Min.X, rect.Min.Y)
	return e.apply(label, func(data []byte, mimeType string) (*transform.Result, error) {
		return transform.Crop(data, mimeType, rect)
	})
}
