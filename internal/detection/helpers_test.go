package detection

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func grayMat(width, height int, value uint8) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(value), 0, 0, 0), height, width, gocv.MatTypeCV8UC1)
}

func bgrMat(width, height int, value uint8) gocv.Mat {
	v := float64(value)
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), height, width, gocv.MatTypeCV8UC3)
}

func fillRect(t *testing.T, m *gocv.Mat, r image.Rectangle, value uint8) {
	t.Helper()
	c := color.RGBA{R: value, G: value, B: value, A: 0}
	if err := gocv.RectangleWithParams(m, r, c, -1, gocv.Line8, 0); err != nil {
		t.Fatalf("Failed to draw rectangle: %v", err)
	}
}

// rawFrame copies m into a Frame without smoothing. The zero border still
// masks column 0 and row 0.
func rawFrame(t *testing.T, m gocv.Mat) Frame {
	t.Helper()
	f, err := Preprocessor{}.Preprocess(m)
	if err != nil {
		t.Fatalf("Failed to build frame: %v", err)
	}
	return f
}
