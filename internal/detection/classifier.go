package detection

import (
	"fmt"
	"math"
)

// Thresholds are the region count and change probability limits for each
// step of the classification cascade.
type Thresholds struct {
	MinRegions          int
	MinProbability      float64
	MinorRegions        int
	MinorProbability    float64
	PersonRegions       int
	PersonProbability   float64
	InFrontRegions      int
	InFrontProbability  float64
	CarRegions          int
	CarProbability      float64
	ClimaticRegions     int
	ClimaticProbability float64
}

// DefaultThresholds returns the tuned defaults for a fixed outdoor camera.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinRegions:          0,
		MinProbability:      0,
		MinorRegions:        10,
		MinorProbability:    0.02,
		PersonRegions:       2,
		PersonProbability:   1,
		InFrontRegions:      3,
		InFrontProbability:  30,
		CarRegions:          10,
		CarProbability:      10,
		ClimaticRegions:     15,
		ClimaticProbability: 25,
	}
}

// Validate rejects negative counts and negative or non-finite probabilities.
func (t Thresholds) Validate() error {
	steps := []struct {
		name        string
		regions     int
		probability float64
	}{
		{"min", t.MinRegions, t.MinProbability},
		{"minor", t.MinorRegions, t.MinorProbability},
		{"person", t.PersonRegions, t.PersonProbability},
		{"infront", t.InFrontRegions, t.InFrontProbability},
		{"car", t.CarRegions, t.CarProbability},
		{"climatic", t.ClimaticRegions, t.ClimaticProbability},
	}
	for _, s := range steps {
		if s.regions < 0 {
			return fmt.Errorf("%w: %s region count %d is negative", ErrInvalidInput, s.name, s.regions)
		}
		if math.IsNaN(s.probability) || math.IsInf(s.probability, 0) || s.probability < 0 {
			return fmt.Errorf("%w: %s probability %v must be finite and non-negative", ErrInvalidInput, s.name, s.probability)
		}
	}
	return nil
}

// Verdict is the classification of one frame against its successor.
type Verdict struct {
	Category Category `json:"category"`
	// Discard is true when the frame carries no meaningful change and
	// should be deleted.
	Discard     bool    `json:"discard"`
	Probability float64 `json:"probability"`
}

// Classify runs the cascade. filtered is the number of regions that passed
// the area filter, total is the fragmentation count from the second
// dilation, score is the filtered area sum. The first matching rule wins.
//
// The probability comparisons against MinProbability are exact. They rarely
// fire in practice; changing them alters which frames are deleted.
func Classify(filtered, total int, score, frameArea float64, t Thresholds) Verdict {
	p := score / frameArea

	var c Category
	switch {
	case filtered == t.MinRegions || p == t.MinProbability:
		c = NoChange
	case total >= t.MinorRegions && p >= t.MinorProbability:
		c = MinorSunlight
	case filtered < t.PersonRegions && p < t.PersonProbability:
		c = Person
	case filtered <= t.InFrontRegions && p <= t.InFrontProbability:
		c = InFrontOfCamera
	case filtered < t.CarRegions && p <= t.CarProbability:
		c = Car
	case filtered >= t.ClimaticRegions || p >= t.ClimaticProbability:
		c = Climatic
	default:
		c = Unclassified
	}

	return Verdict{Category: c, Discard: c.Discards(), Probability: p}
}
