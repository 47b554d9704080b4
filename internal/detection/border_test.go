package detection

import (
	"errors"
	"testing"
)

func TestBorderSpec_Bands(t *testing.T) {
	tests := []struct {
		border                 BorderSpec
		width, height          int
		xMin, yMin, xMax, yMax int
	}{
		{DefaultBorder, 200, 100, 10, 10, 190, 100},
		{BorderSpec{}, 640, 480, 0, 0, 640, 480},
		{BorderSpec{Left: 3.3, Top: 2.5, Right: 3.3, Bottom: 2.5}, 100, 100, 3, 2, 97, 98},
		{BorderSpec{Left: 50, Bottom: 49}, 101, 101, 50, 0, 101, 52},
	}

	for _, tt := range tests {
		xMin, yMin, xMax, yMax := tt.border.Bands(tt.width, tt.height)
		if xMin != tt.xMin || yMin != tt.yMin || xMax != tt.xMax || yMax != tt.yMax {
			t.Errorf("Bands(%d, %d) for %+v = (%d, %d, %d, %d), expected (%d, %d, %d, %d)",
				tt.width, tt.height, tt.border, xMin, yMin, xMax, yMax, tt.xMin, tt.yMin, tt.xMax, tt.yMax)
		}
	}
}

func TestBorderSpec_Validate(t *testing.T) {
	valid := []BorderSpec{DefaultBorder, {}, {Left: 49, Right: 50}}
	for _, b := range valid {
		if err := b.Validate(); err != nil {
			t.Errorf("Expected %+v to be valid, got %v", b, err)
		}
	}

	invalid := []BorderSpec{
		{Left: -1},
		{Top: 100},
		{Left: 60, Right: 40},
		{Top: 70, Bottom: 30},
	}
	for _, b := range invalid {
		if err := b.Validate(); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for %+v, got %v", b, err)
		}
	}
}

func TestBorderSpec_ApplyMasksInclusiveBands(t *testing.T) {
	tests := []struct {
		name   string
		border BorderSpec
	}{
		{"default", DefaultBorder},
		{"zero", BorderSpec{}},
		{"all sides", BorderSpec{Left: 10, Top: 20, Right: 15, Bottom: 5}},
		{"fractional", BorderSpec{Left: 3.3, Top: 2.5, Right: 3.3, Bottom: 2.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := grayMat(200, 100, 120)
			defer img.Close()

			if err := tt.border.Apply(&img); err != nil {
				t.Fatalf("Apply failed: %v", err)
			}

			xMin, yMin, xMax, yMax := tt.border.Bands(200, 100)
			for y := 0; y < 100; y++ {
				for x := 0; x < 200; x++ {
					want := uint8(120)
					if x <= xMin || x >= xMax || y <= yMin || y >= yMax {
						want = 0
					}
					if v := img.GetUCharAt(y, x); v != want {
						t.Fatalf("Pixel (%d,%d) = %d, expected %d", x, y, v, want)
					}
				}
			}
		})
	}
}

func TestBorderSpec_ApplyZeroSides(t *testing.T) {
	img := grayMat(40, 30, 200)
	defer img.Close()

	if err := (BorderSpec{}).Apply(&img); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	checks := []struct {
		x, y int
		want uint8
	}{
		{0, 15, 0},
		{20, 0, 0},
		{1, 15, 200},
		{20, 1, 200},
		{39, 15, 200},
		{20, 29, 200},
	}
	for _, c := range checks {
		if v := img.GetUCharAt(c.y, c.x); v != c.want {
			t.Errorf("Pixel (%d,%d) = %d, expected %d", c.x, c.y, v, c.want)
		}
	}
}
