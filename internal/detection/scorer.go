package detection

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Region is one connected area of change, described by its outer contour.
type Region struct {
	Contour []image.Point
	Area    float64
	Bounds  image.Rectangle
}

// ChangeResult is the outcome of comparing two frames.
type ChangeResult struct {
	// Score is the summed area of all regions at or above the minimum area.
	Score float64
	// Regions are the regions that passed the area filter.
	Regions []Region
	// TotalRegions counts every external region on the mask after a second
	// round of dilation, without area filtering.
	TotalRegions int
	// Mask is the thresholded, dilated difference image.
	Mask gocv.Mat
}

// Close frees the mask.
func (r ChangeResult) Close() error {
	return r.Mask.Close()
}

// Score diffs two preprocessed frames of equal size and measures the regions
// of change whose contour area is at least minArea.
func Score(prev, next Frame, minArea float64) (ChangeResult, error) {
	if prev.Size() != next.Size() {
		return ChangeResult{}, fmt.Errorf("%w: frame sizes differ: %v vs %v", ErrInvalidInput, prev.Size(), next.Size())
	}
	if math.IsNaN(minArea) || minArea < 0 {
		return ChangeResult{}, fmt.Errorf("%w: minimum area %.2f must be non-negative", ErrInvalidInput, minArea)
	}

	delta := gocv.NewMat()
	defer delta.Close()
	if err := gocv.AbsDiff(prev.Mat(), next.Mat(), &delta); err != nil {
		return ChangeResult{}, fmt.Errorf("failed to compute absolute difference: %w", err)
	}

	mask := gocv.NewMat()
	gocv.Threshold(delta, &mask, DiffThreshold, 255, gocv.ThresholdBinary)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()

	if err := dilate(&mask, kernel, DilateIterations); err != nil {
		mask.Close()
		return ChangeResult{}, err
	}

	result := ChangeResult{Mask: mask}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < minArea {
			continue
		}
		result.Regions = append(result.Regions, Region{
			Contour: contour.ToPoints(),
			Area:    area,
			Bounds:  gocv.BoundingRect(contour),
		})
		result.Score += area
	}

	total, err := countRegions(mask, kernel)
	if err != nil {
		mask.Close()
		return ChangeResult{}, err
	}
	result.TotalRegions = total

	return result, nil
}

// countRegions dilates a copy of mask once more and counts its external
// contours. This is the fragmentation measure used by the classifier.
func countRegions(mask gocv.Mat, kernel gocv.Mat) (int, error) {
	grown := mask.Clone()
	defer grown.Close()

	if err := dilate(&grown, kernel, DilateIterations); err != nil {
		return 0, err
	}

	contours := gocv.FindContours(grown, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	return contours.Size(), nil
}

func dilate(mask *gocv.Mat, kernel gocv.Mat, iterations int) error {
	for i := 0; i < iterations; i++ {
		if err := gocv.Dilate(*mask, mask, kernel); err != nil {
			return fmt.Errorf("failed to dilate mask: %w", err)
		}
	}
	return nil
}
