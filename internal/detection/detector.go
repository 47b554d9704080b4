package detection

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// Comparison is everything measured for one frame pair.
type Comparison struct {
	Verdict      Verdict
	Score        float64
	Regions      []Region
	TotalRegions int
	FrameArea    float64
}

// Detector preprocesses, scores and classifies frame pairs. It holds no
// per-pair state and is safe for concurrent use.
type Detector struct {
	Preprocessor Preprocessor
	MinArea      float64
	Thresholds   Thresholds
}

// NewDetector returns a Detector with every default applied.
func NewDetector() *Detector {
	return &Detector{
		Preprocessor: NewPreprocessor(),
		MinArea:      DefaultMinArea,
		Thresholds:   DefaultThresholds(),
	}
}

// Validate checks the whole configuration.
func (d *Detector) Validate() error {
	if err := d.Preprocessor.Validate(); err != nil {
		return err
	}
	if math.IsNaN(d.MinArea) || d.MinArea < 0 {
		return fmt.Errorf("%w: minimum area %.2f must be non-negative", ErrInvalidInput, d.MinArea)
	}
	return d.Thresholds.Validate()
}

// Compare classifies prev against next. Neither image is modified.
func (d *Detector) Compare(prev, next gocv.Mat) (Comparison, error) {
	if prev.Rows() != next.Rows() || prev.Cols() != next.Cols() {
		return Comparison{}, fmt.Errorf("%w: image sizes differ: %dx%d vs %dx%d",
			ErrInvalidInput, prev.Cols(), prev.Rows(), next.Cols(), next.Rows())
	}

	prevFrame, err := d.Preprocessor.Preprocess(prev)
	if err != nil {
		return Comparison{}, err
	}
	defer prevFrame.Close()

	nextFrame, err := d.Preprocessor.Preprocess(next)
	if err != nil {
		return Comparison{}, err
	}
	defer nextFrame.Close()

	result, err := Score(prevFrame, nextFrame, d.MinArea)
	if err != nil {
		return Comparison{}, err
	}
	defer result.Close()

	area := prevFrame.Area()
	return Comparison{
		Verdict:      Classify(len(result.Regions), result.TotalRegions, result.Score, area, d.Thresholds),
		Score:        result.Score,
		Regions:      result.Regions,
		TotalRegions: result.TotalRegions,
		FrameArea:    area,
	}, nil
}
