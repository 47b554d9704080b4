package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Frame is a grayscale, smoothed and border-masked image ready for
// comparison. It owns its Mat; call Close when done.
type Frame struct {
	mat gocv.Mat
}

// NewFrame wraps an 8-bit single channel Mat. The Frame takes ownership.
func NewFrame(gray gocv.Mat) (Frame, error) {
	if gray.Empty() {
		return Frame{}, fmt.Errorf("%w: empty frame", ErrInvalidInput)
	}
	if gray.Channels() != 1 || gray.Type() != gocv.MatTypeCV8UC1 {
		return Frame{}, fmt.Errorf("%w: frame must be 8-bit single channel, got %d channels", ErrInvalidInput, gray.Channels())
	}
	return Frame{mat: gray}, nil
}

// Mat exposes the underlying grayscale Mat for read-only use.
func (f Frame) Mat() gocv.Mat {
	return f.mat
}

// Size returns the frame dimensions.
func (f Frame) Size() image.Point {
	return image.Pt(f.mat.Cols(), f.mat.Rows())
}

// Area returns width*height in pixels.
func (f Frame) Area() float64 {
	return float64(f.mat.Cols() * f.mat.Rows())
}

// Close frees the frame's Mat.
func (f Frame) Close() error {
	return f.mat.Close()
}

// Preprocessor turns raw captures into comparable frames.
type Preprocessor struct {
	// BlurRadii are Gaussian kernel sizes applied one after another.
	BlurRadii []int
	// Border is blanked out after smoothing.
	Border BorderSpec
}

// NewPreprocessor returns a Preprocessor with the default blur radii and
// border mask.
func NewPreprocessor() Preprocessor {
	radii := make([]int, len(DefaultBlurRadii))
	copy(radii, DefaultBlurRadii)
	return Preprocessor{BlurRadii: radii, Border: DefaultBorder}
}

// Validate checks blur radii and border percentages.
func (p Preprocessor) Validate() error {
	for _, r := range p.BlurRadii {
		if r <= 0 || r%2 == 0 {
			return fmt.Errorf("%w: blur radius %d must be a positive odd integer", ErrInvalidInput, r)
		}
	}
	return p.Border.Validate()
}

// Preprocess converts img to grayscale, smooths it with every blur radius in
// turn and masks the border. img is left untouched.
func (p Preprocessor) Preprocess(img gocv.Mat) (Frame, error) {
	if img.Empty() {
		return Frame{}, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if err := p.Validate(); err != nil {
		return Frame{}, err
	}

	gray := gocv.NewMat()
	if err := toGray(img, &gray); err != nil {
		gray.Close()
		return Frame{}, err
	}

	for _, radius := range p.BlurRadii {
		if err := gocv.GaussianBlur(gray, &gray, image.Pt(radius, radius), 0, 0, gocv.BorderDefault); err != nil {
			gray.Close()
			return Frame{}, fmt.Errorf("failed to blur with radius %d: %w", radius, err)
		}
	}

	if err := p.Border.Apply(&gray); err != nil {
		gray.Close()
		return Frame{}, err
	}

	return NewFrame(gray)
}

// toGray writes an 8-bit single channel copy of src into dst.
func toGray(src gocv.Mat, dst *gocv.Mat) error {
	var err error
	switch src.Channels() {
	case 1:
		err = src.CopyTo(dst)
	case 3:
		err = gocv.CvtColor(src, dst, gocv.ColorBGRToGray)
	case 4:
		err = gocv.CvtColor(src, dst, gocv.ColorBGRAToGray)
	default:
		return fmt.Errorf("%w: unsupported channel count %d", ErrInvalidInput, src.Channels())
	}
	if err != nil {
		return fmt.Errorf("failed to convert image to grayscale: %w", err)
	}
	if dst.Type() != gocv.MatTypeCV8UC1 {
		return fmt.Errorf("%w: image depth must be 8-bit", ErrInvalidInput)
	}
	return nil
}
