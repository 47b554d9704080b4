package prune

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"framepruner/internal/detection"
	"framepruner/internal/logger"
)

// FrameSource provides the ordered frames of a sequence.
type FrameSource interface {
	Len() int
	Name(i int) string
	// Decode returns a fresh Mat for frame i; the caller closes it.
	Decode(i int) (gocv.Mat, error)
}

// Sink receives every frame the detector decided to discard.
type Sink interface {
	Discard(ctx context.Context, result FrameResult) error
}

// Observer is notified of each frame result as soon as it is scored. With
// more than one worker it is called concurrently and out of order.
type Observer interface {
	Observe(result FrameResult)
}

// FrameResult is the verdict for frame Index compared to its successor.
type FrameResult struct {
	Index        int               `json:"index"`
	Name         string            `json:"name"`
	Next         string            `json:"next"`
	Verdict      detection.Verdict `json:"verdict"`
	Score        float64           `json:"score"`
	Regions      int               `json:"regions"`
	TotalRegions int               `json:"total_regions"`
	HashDistance int               `json:"hash_distance"`
	Duration     time.Duration     `json:"duration"`
}

// Stats describes the distribution of change probability over a run.
type Stats struct {
	MeanProbability   float64 `json:"mean_probability"`
	StdDevProbability float64 `json:"stddev_probability"`
	MaxProbability    float64 `json:"max_probability"`
}

// Report is the outcome of a run.
type Report struct {
	Frames  int               `json:"frames"`
	Results []FrameResult     `json:"results"`
	Summary detection.Summary `json:"summary"`
	Stats   Stats             `json:"stats"`
}

// Discarded returns the results whose frames were discarded, in order.
func (r *Report) Discarded() []FrameResult {
	var out []FrameResult
	for _, res := range r.Results {
		if res.Verdict.Discard {
			out = append(out, res)
		}
	}
	return out
}

// Options tune a Driver.
type Options struct {
	// Workers is the number of frame pairs scored at once.
	Workers int
	// RecordHash adds a perceptual hash distance to every result.
	RecordHash bool
}

// Driver walks a frame sequence pair by pair.
type Driver struct {
	detector  *detection.Detector
	opts      Options
	logger    *logger.Logger
	observers []Observer
}

// NewDriver creates a Driver around detector.
func NewDriver(detector *detection.Detector, opts Options, logger *logger.Logger) *Driver {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Driver{
		detector: detector,
		opts:     opts,
		logger:   logger,
	}
}

// AddObserver registers o for every frame result.
func (d *Driver) AddObserver(o Observer) {
	d.observers = append(d.observers, o)
}

// Run compares every frame with its successor, then hands discarded frames to
// sink in index order. The last frame is never compared and always kept.
// Any decode failure aborts the run before anything is discarded.
func (d *Driver) Run(ctx context.Context, src FrameSource, sink Sink) (*Report, error) {
	n := src.Len()
	if n == 0 {
		return nil, fmt.Errorf("%w: no frames to compare", detection.ErrInvalidInput)
	}
	if err := d.detector.Validate(); err != nil {
		return nil, err
	}

	report := &Report{Frames: n}
	if n == 1 {
		d.logger.Info("Only one frame in sequence, nothing to compare")
		return report, nil
	}

	pairs := n - 1
	workers := d.opts.Workers
	if workers > pairs {
		workers = pairs
	}

	results := make([]FrameResult, pairs)
	summaries := make([]detection.Summary, workers)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := range jobs {
				if runCtx.Err() != nil {
					continue
				}
				res, err := d.compare(src, i)
				if err != nil {
					fail(err)
					continue
				}
				results[i] = res
				summaries[worker].Add(res.Verdict)
				d.notify(res)
			}
		}(w)
	}

dispatch:
	for i := 0; i < pairs; i++ {
		select {
		case <-runCtx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Results = results
	for _, s := range summaries {
		report.Summary.Merge(s)
	}
	report.Stats = probabilityStats(results)

	for _, res := range results {
		if !res.Verdict.Discard {
			continue
		}
		if err := sink.Discard(ctx, res); err != nil {
			return report, fmt.Errorf("failed to discard %s: %w", res.Name, err)
		}
	}

	return report, nil
}

// compare decodes frames i and i+1 and classifies the pair.
func (d *Driver) compare(src FrameSource, i int) (FrameResult, error) {
	start := time.Now()
	name, next := src.Name(i), src.Name(i+1)

	prevMat, err := src.Decode(i)
	if err != nil {
		return FrameResult{}, fmt.Errorf("frame %d (%s): %w", i, name, err)
	}
	defer prevMat.Close()

	nextMat, err := src.Decode(i + 1)
	if err != nil {
		return FrameResult{}, fmt.Errorf("frame %d (%s): %w", i+1, next, err)
	}
	defer nextMat.Close()

	cmp, err := d.detector.Compare(prevMat, nextMat)
	if err != nil {
		return FrameResult{}, fmt.Errorf("comparing %s with %s: %w", name, next, err)
	}

	res := FrameResult{
		Index:        i,
		Name:         name,
		Next:         next,
		Verdict:      cmp.Verdict,
		Score:        cmp.Score,
		Regions:      len(cmp.Regions),
		TotalRegions: cmp.TotalRegions,
	}

	if d.opts.RecordHash {
		dist, err := detection.HashDistance(prevMat, nextMat)
		if err != nil {
			d.logger.Warning("Could not hash %s: %v", name, err)
		} else {
			res.HashDistance = dist
		}
	}

	res.Duration = time.Since(start)
	d.logger.Debug("Frame %d %s: %s (regions=%d/%d, p=%.5f)",
		i, name, res.Verdict.Category, res.Regions, res.TotalRegions, res.Verdict.Probability)
	return res, nil
}

func (d *Driver) notify(res FrameResult) {
	for _, o := range d.observers {
		o.Observe(res)
	}
}

func probabilityStats(results []FrameResult) Stats {
	if len(results) == 0 {
		return Stats{}
	}
	probs := make([]float64, len(results))
	for i, r := range results {
		probs[i] = r.Verdict.Probability
	}
	mean, std := stat.MeanStdDev(probs, nil)
	if len(probs) < 2 {
		std = 0
	}
	return Stats{
		MeanProbability:   mean,
		StdDevProbability: std,
		MaxProbability:    floats.Max(probs),
	}
}

// IsInvalidInput reports whether err is a precondition failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, detection.ErrInvalidInput)
}

// IsDecodeError reports whether err came from a frame that failed to decode.
func IsDecodeError(err error) bool {
	return errors.Is(err, detection.ErrDecode)
}
