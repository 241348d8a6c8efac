// Package transform implements the client-side pixel operations: rotation,
// flips, filters, adjustments, cropping, and grid compositing. Every
// operation is a pure function from encoded bytes to encoded bytes with no
// side effects.
package transform

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"

	_ "image/gif"
)

// ErrUnsupportedImage is returned when input bytes cannot be decoded.
var ErrUnsupportedImage = errors.New("unsupported or unreadable image")

// Result is the output of one transform.
type Result struct {
	Data     []byte
	MimeType string
}

// decode parses encoded image bytes.
func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}

// encode serializes an image in the requested mime type. Types without an
// encoder fall back to PNG, mirroring canvas toDataURL behavior.
func encode(img image.Image, mimeType string) (*Result, error) {
	var buf bytes.Buffer
	switch mimeType {
	case "image/jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		mimeType = "image/png"
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	}
	return &Result{Data: buf.Bytes(), MimeType: mimeType}, nil
}

// toNRGBA converts any decoded image into a mutable NRGBA copy.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// mapPixels applies fn to every pixel of a copy of src.
func mapPixels(src *image.NRGBA, fn func(c color.NRGBA) color.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetNRGBA(x, y, fn(src.NRGBAAt(x, y)))
		}
	}
	return dst
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
