package transform

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// GridSize is the number of tiles a combined grid requires.
const GridSize = 4

// CombineGrid composites exactly four images into a 2x2 grid on a white
// canvas. Tiles keep their native sizes; each column is as wide as its
// widest member and each row as tall as its tallest, with tiles centered
// inside their cells. The result is always PNG.
func CombineGrid(sources [][]byte) (*Result, error) {
	if len(sources) != GridSize {
		return nil, fmt.Errorf("grid needs exactly %d images, got %d", GridSize, len(sources))
	}

	tiles := make([]*image.NRGBA, GridSize)
	for i, data := range sources {
		img, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("grid tile %d: %w", i+1, err)
		}
		tiles[i] = toNRGBA(img)
	}

	dims := make([]image.Point, GridSize)
	for i, t := range tiles {
		dims[i] = image.Pt(t.Bounds().Dx(), t.Bounds().Dy())
	}

	col1 := maxInt(dims[0].X, dims[2].X)
	col2 := maxInt(dims[1].X, dims[3].X)
	row1 := maxInt(dims[0].Y, dims[1].Y)
	row2 := maxInt(dims[2].Y, dims[3].Y)

	canvas := image.NewNRGBA(image.Rect(0, 0, col1+col2, row1+row2))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	cells := []image.Rectangle{
		image.Rect(0, 0, col1, row1),
		image.Rect(col1, 0, col1+col2, row1),
		image.Rect(0, row1, col1, row1+row2),
		image.Rect(col1, row1, col1+col2, row1+row2),
	}
	for i, t := range tiles {
		cell := cells[i]
		offset := image.Pt(
			cell.Min.X+(cell.Dx()-dims[i].X)/2,
			cell.Min.Y+(cell.Dy()-dims[i].Y)/2,
		)
		target := image.Rectangle{Min: offset, Max: offset.Add(dims[i])}
		draw.Draw(canvas, target, t, t.Bounds().Min, draw.Over)
	}

	return encode(canvas, "image/png")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
