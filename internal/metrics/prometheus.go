package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"framepruner/internal/prune"
)

var (
	VerdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framepruner_verdicts_total",
		Help: "Total number of frame comparisons, by category",
	}, []string{"category"})

	FramesMarkedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framepruner_frames_marked_total",
		Help: "Total number of frames marked for discarding",
	})

	FramesRemovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framepruner_frames_removed_total",
		Help: "Total number of frames deleted, moved to trash or dry-run logged",
	})

	ComparisonDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "framepruner_comparison_duration_seconds",
		Help:    "Duration of decoding and comparing one frame pair",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	ChangeProbability = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "framepruner_change_probability",
		Help:    "Changed area as a fraction of the frame area",
		Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.25, 0.5, 1},
	})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framepruner_runs_total",
		Help: "Total number of pruning runs, by status",
	}, []string{"status"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "framepruner_active_workers",
		Help: "Number of workers of the current run",
	})
)

// Recorder feeds frame results into the package metrics.
type Recorder struct{}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Observe records one scored frame.
func (Recorder) Observe(result prune.FrameResult) {
	VerdictsTotal.WithLabelValues(result.Verdict.Category.String()).Inc()
	if result.Verdict.Discard {
		FramesMarkedTotal.Inc()
	}
	ComparisonDuration.Observe(result.Duration.Seconds())
	ChangeProbability.Observe(result.Verdict.Probability)
}
