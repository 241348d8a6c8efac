package transform

import (
	"fmt"
	"image"
	"image/color"
)

// FlipDirection selects the flip axis.
type FlipDirection string

const (
	FlipHorizontal FlipDirection = "horizontal"
	FlipVertical   FlipDirection = "vertical"
)

// Filter is a named one-shot color filter.
type Filter string

const (
	FilterGrayscale Filter = "grayscale"
	FilterSepia     Filter = "sepia"
	FilterInvert    Filter = "invert"
	FilterBlur      Filter = "blur"
)

// Adjustments are percent-based color adjustments; 100 is identity for each.
type Adjustments struct {
	Brightness int
	Contrast   int
	Saturation int
}

// DefaultAdjustments is the identity adjustment.
var DefaultAdjustments = Adjustments{Brightness: 100, Contrast: 100, Saturation: 100}

// Rotate turns the image 90 degrees; positive degrees rotate clockwise.
func Rotate(data []byte, mimeType string, degrees int) (*Result, error) {
	if degrees != 90 && degrees != -90 {
		return nil, fmt.Errorf("unsupported rotation %d degrees", degrees)
	}
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	src := toNRGBA(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, h, w))

	for y := 0; y < w; y++ {
		for x := 0; x < h; x++ {
			if degrees > 0 {
				dst.SetNRGBA(x, y, src.NRGBAAt(y, h-1-x))
			} else {
				dst.SetNRGBA(x, y, src.NRGBAAt(w-1-y, x))
			}
		}
	}
	return encode(dst, mimeType)
}

// Flip mirrors the image across the given axis.
func Flip(data []byte, mimeType string, dir FlipDirection) (*Result, error) {
	if dir != FlipHorizontal && dir != FlipVertical {
		return nil, fmt.Errorf("unsupported flip direction %q", dir)
	}
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	src := toNRGBA(img)
	b := src.Bounds()
	dst := image.NewNRGBA(b)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if dir == FlipHorizontal {
				dst.SetNRGBA(x, y, src.NRGBAAt(b.Max.X-1-x, y))
			} else {
				dst.SetNRGBA(x, y, src.NRGBAAt(x, b.Max.Y-1-y))
			}
		}
	}
	return encode(dst, mimeType)
}

// ApplyFilter applies a named filter at full strength.
func ApplyFilter(data []byte, mimeType string, filter Filter) (*Result, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	src := toNRGBA(img)

	var out *image.NRGBA
	switch filter {
	case FilterGrayscale:
		out = mapPixels(src, func(c color.NRGBA) color.NRGBA {
			l := clamp8(0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B))
			return color.NRGBA{R: l, G: l, B: l, A: c.A}
		})
	case FilterSepia:
		out = mapPixels(src, func(c color.NRGBA) color.NRGBA {
			r, g, b := float64(c.R), float64(c.G), float64(c.B)
			return color.NRGBA{
				R: clamp8(0.393*r + 0.769*g + 0.189*b),
				G: clamp8(0.349*r + 0.686*g + 0.168*b),
				B: clamp8(0.272*r + 0.534*g + 0.131*b),
				A: c.A,
			}
		})
	case FilterInvert:
		out = mapPixels(src, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B, A: c.A}
		})
	case FilterBlur:
		out = boxBlur(src, 4)
	default:
		return nil, fmt.Errorf("unsupported filter %q", filter)
	}
	return encode(out, mimeType)
}

// Adjust applies brightness, contrast, and saturation in that order.
func Adjust(data []byte, mimeType string, adj Adjustments) (*Result, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	src := toNRGBA(img)

	brightness := float64(adj.Brightness) / 100
	contrast := float64(adj.Contrast) / 100
	saturation := float64(adj.Saturation) / 100

	out := mapPixels(src, func(c color.NRGBA) color.NRGBA {
		r, g, b := float64(c.R), float64(c.G), float64(c.B)

		r, g, b = r*brightness, g*brightness, b*brightness
		r = (r-128)*contrast + 128
		g = (g-128)*contrast + 128
		b = (b-128)*contrast + 128
		luma := 0.2126*r + 0.7152*g + 0.0722*b
		r = luma + (r-luma)*saturation
		g = luma + (g-luma)*saturation
		b = luma + (b-luma)*saturation

		return color.NRGBA{R: clamp8(r), G: clamp8(g), B: clamp8(b), A: c.A}
	})
	return encode(out, mimeType)
}

// Crop extracts the given pixel rectangle.
func Crop(data []byte, mimeType string, rect image.Rectangle) (*Result, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	src := toNRGBA(img)

	region := rect.Intersect(src.Bounds())
	if region.Empty() {
		return nil, fmt.Errorf("crop rectangle %v is outside the image bounds %v", rect, src.Bounds())
	}

	dst := image.NewNRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	for y := 0; y < region.Dy(); y++ {
		for x := 0; x < region.Dx(); x++ {
			dst.SetNRGBA(x, y, src.NRGBAAt(region.Min.X+x, region.Min.Y+y))
		}
	}
	return encode(dst, mimeType)
}

// boxBlur approximates a gaussian blur with a separable box blur.
func boxBlur(src *image.NRGBA, radius int) *image.NRGBA {
	horizontal := blurPass(src, radius, true)
	return blurPass(horizontal, radius, false)
}

func blurPass(src *image.NRGBA, radius int, horizontal bool) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var r, g, bl, a, n int
			for d := -radius; d <= radius; d++ {
				sx, sy := x, y
				if horizontal {
					sx += d
				} else {
					sy += d
				}
				if sx < b.Min.X || sx >= b.Max.X || sy < b.Min.Y || sy >= b.Max.Y {
					continue
				}
				c := src.NRGBAAt(sx, sy)
				r += int(c.R)
				g += int(c.G)
				bl += int(c.B)
				a += int(c.A)
				n++
			}
			dst.SetNRGBA(x, y, color.NRGBA{
				R: uint8(r / n),
				G: uint8(g / n),
				B: uint8(bl / n),
				A: uint8(a / n),
			})
		}
	}
	return dst
}
