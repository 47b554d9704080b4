package detection

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

var black = color.RGBA{R: 0, G: 0, B: 0, A: 0}

// BorderSpec is the percentage of width (Left, Right) or height (Top, Bottom)
// blanked out on each side of a frame before comparison.
type BorderSpec struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Validate checks every side is in [0,100) and opposite sides leave part of
// the frame visible.
func (b BorderSpec) Validate() error {
	sides := []struct {
		name  string
		value float64
	}{
		{"left", b.Left},
		{"top", b.Top},
		{"right", b.Right},
		{"bottom", b.Bottom},
	}
	for _, s := range sides {
		if math.IsNaN(s.value) || s.value < 0 || s.value >= 100 {
			return fmt.Errorf("%w: border %s %.2f%% outside [0,100)", ErrInvalidInput, s.name, s.value)
		}
	}
	if b.Left+b.Right >= 100 {
		return fmt.Errorf("%w: left+right border covers the whole width", ErrInvalidInput)
	}
	if b.Top+b.Bottom >= 100 {
		return fmt.Errorf("%w: top+bottom border covers the whole height", ErrInvalidInput)
	}
	return nil
}

// Bands returns the band edges of a width x height frame. The edges are part
// of the bands: columns x <= xMin or x >= xMax and rows y <= yMin or y >= yMax
// are masked, so only xMin < x < xMax, yMin < y < yMax stays visible.
func (b BorderSpec) Bands(width, height int) (xMin, yMin, xMax, yMax int) {
	xMin = int(b.Left * float64(width) / 100)
	xMax = width - int(b.Right*float64(width)/100)
	yMin = int(b.Top * float64(height) / 100)
	yMax = height - int(b.Bottom*float64(height)/100)
	return xMin, yMin, xMax, yMax
}

// Apply paints the masked bands of img black in place. Each band is a filled
// rectangle whose corners are both included, drawn without anti-aliasing. A
// 0% left or top side still masks column 0 or row 0; a 0% right or bottom
// side falls outside the frame and masks nothing.
func (b BorderSpec) Apply(img *gocv.Mat) error {
	w, h := img.Cols(), img.Rows()
	xMin, yMin, xMax, yMax := b.Bands(w, h)

	// image.Rect would reorder or drop degenerate corners, so build them as is.
	bands := []image.Rectangle{
		{Min: image.Pt(0, 0), Max: image.Pt(xMin, h)},
		{Min: image.Pt(0, 0), Max: image.Pt(w, yMin)},
		{Min: image.Pt(xMax, 0), Max: image.Pt(w, h)},
		{Min: image.Pt(0, yMax), Max: image.Pt(w, h)},
	}
	for _, band := range bands {
		if err := gocv.RectangleWithParams(img, band, black, -1, gocv.Line8, 0); err != nil {
			return fmt.Errorf("failed to mask border: %w", err)
		}
	}
	return nil
}
