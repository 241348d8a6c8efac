// Package draft serializes the full workspace image set, inline bytes
// included, to a single portable file. Drafts are independent of the blob
// and metadata stores: a draft opened on another machine carries everything.
package draft

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chenyangcun/aiedit/internal/models"
)

const (
	// FormatVersion is the draft envelope version.
	FormatVersion = "1.0"

	// AppName is the format sentinel; import fails closed when it does
	// not match exactly.
	AppName = "AI Image Editor Draft"
)

var (
	// ErrInvalidFormat is returned when a draft file fails validation.
	ErrInvalidFormat = errors.New("invalid draft file format")

	// ErrNoImages is returned when exporting an empty workspace.
	ErrNoImages = errors.New("no images to export")
)

// envelope is the on-disk draft shape.
type envelope struct {
	Version string  `json:"version"`
	AppName string  `json:"appName"`
	Data    payload `json:"data"`
}

type payload struct {
	Images json.RawMessage `json:"images"`
}

// Export wraps the image set in the draft envelope and serializes it.
func Export(images []*models.Image) ([]byte, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("marshal images: %w", err)
	}
	data, err := json.MarshalIndent(envelope{
		Version: FormatVersion,
		AppName: AppName,
		Data:    payload{Images: imagesJSON},
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal draft: %w", err)
	}
	return data, nil
}

// Import parses and validates a draft file, returning the contained image
// set. Validation fails closed: the appName sentinel must match exactly,
// data.images must be an ordered sequence, and every entry must be a
// non-null image carrying an id.
func Import(data []byte) ([]*models.Image, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	if env.AppName != AppName {
		return nil, fmt.Errorf("%w: unexpected appName %q", ErrInvalidFormat, env.AppName)
	}
	if !isJSONArray(env.Data.Images) {
		return nil, fmt.Errorf("%w: data.images is not an array", ErrInvalidFormat)
	}

	var images []*models.Image
	if err := json.Unmarshal(env.Data.Images, &images); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	for i, img := range images {
		if img == nil {
			return nil, fmt.Errorf("%w: images[%d] is null", ErrInvalidFormat, i)
		}
		if img.ID == "" {
			return nil, fmt.Errorf("%w: images[%d] has no id", ErrInvalidFormat, i)
		}
	}
	return images, nil
}

// isJSONArray reports whether raw holds a JSON array.
func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
