package detection

import (
	"fmt"

	"github.com/corona10/goimagehash"
	"gocv.io/x/gocv"
)

// HashDistance returns the Hamming distance between the perceptual hashes of
// two images. It is a diagnostic and does not feed the classifier.
func HashDistance(prev, next gocv.Mat) (int, error) {
	a, err := perceptionHash(prev)
	if err != nil {
		return 0, err
	}
	b, err := perceptionHash(next)
	if err != nil {
		return 0, err
	}
	return a.Distance(b)
}

func perceptionHash(m gocv.Mat) (*goimagehash.ImageHash, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert Mat to image: %w", err)
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("failed to hash image: %w", err)
	}
	return hash, nil
}
