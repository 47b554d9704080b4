package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"framepruner/internal/config"
	"framepruner/internal/detection"
	"framepruner/internal/logger"
	"framepruner/internal/metrics"
	"framepruner/internal/models"
	"framepruner/internal/prune"
	"framepruner/internal/repository"
	"framepruner/internal/repository/sqlite"
	"framepruner/internal/routes"
	"framepruner/internal/storage"
	"framepruner/internal/websocket"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	logger   *logger.Logger
	detector *detection.Detector
	db       *sqlite.DB
	runs     repository.RunRepository
	verdicts repository.VerdictRepository
	hub      *websocket.Hub
	server   *http.Server
	out      io.Writer
}

// New wires the application from a validated configuration.
func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.LogDirectory, cfg.Verbose)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:   cfg,
		logger:   log,
		detector: cfg.Detector(),
		out:      os.Stdout,
	}

	if cfg.DBPath != "" {
		db, err := sqlite.New(cfg.DBPath)
		if err != nil {
			log.Close()
			return nil, err
		}
		a.db = db
		a.runs = sqlite.NewRunRepository(db)
		a.verdicts = sqlite.NewVerdictRepository(db)
	}

	if cfg.ListenAddr != "" {
		a.hub = websocket.NewHub(log)
		a.server = &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           routes.SetupRoutes(a.hub, a.runs, a.verdicts, cfg, log),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return a, nil
}

// SetOutput redirects the final report, stdout by default.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// Run prunes the configured directory once. With Serve set it then keeps the
// progress server up until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	src, err := storage.OpenDirectory(a.config.ImageDirectory, a.config.ImageExtensions)
	if err != nil {
		return err
	}

	serverErr := a.startServer()
	defer a.stopServer()

	run := &models.Run{
		ID:        uuid.NewString(),
		Directory: src.Path(),
		StartedAt: time.Now().UTC(),
		Status:    models.RunStatusRunning,
		DryRun:    a.config.DryRun,
		Frames:    src.Len(),
	}
	a.startRun(run)

	a.logger.Info("Looping over %d images in %s (run %s)", src.Len(), src.Path(), run.ID)

	driver := prune.NewDriver(a.detector, prune.Options{
		Workers:    a.config.Workers,
		RecordHash: a.config.RecordHash,
	}, a.logger)
	driver.AddObserver(metrics.NewRecorder())
	if a.hub != nil {
		driver.AddObserver(a.hub)
	}

	remover := storage.NewRemover(src.Path(), a.config.TrashDirectory, a.config.DryRun, a.logger)

	metrics.ActiveWorkers.Set(float64(a.config.Workers))
	report, runErr := driver.Run(ctx, src, remover)
	metrics.ActiveWorkers.Set(0)

	metrics.FramesRemovedTotal.Add(float64(remover.Removed()))
	a.finishRun(run, report, remover.Removed(), runErr)
	if runErr != nil {
		return runErr
	}

	printReport(a.out, report, a.config.DryRun)
	a.logger.Info("Run %s finished: %d of %d images discarded", run.ID, report.Summary.Discarded, report.Frames)

	if a.config.Serve && a.server != nil {
		a.logger.Info("Serving run history on %s until interrupted", a.config.ListenAddr)
		select {
		case <-ctx.Done():
		case err := <-serverErr:
			return err
		}
	}
	return nil
}

// Close releases the database and log files.
func (a *App) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	errs = append(errs, a.logger.Close())
	return errors.Join(errs...)
}

func (a *App) startServer() <-chan error {
	errCh := make(chan error, 1)
	if a.server == nil {
		return errCh
	}

	go a.hub.Run()
	go func() {
		a.logger.Info("Progress server listening on %s", a.config.ListenAddr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("Progress server error: %v", err)
			errCh <- err
		}
	}()
	return errCh
}

func (a *App) stopServer() {
	if a.server == nil {
		return
	}
	a.hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Warning("Progress server shutdown: %v", err)
	}
}

func (a *App) startRun(run *models.Run) {
	if a.runs != nil {
		if err := a.runs.Insert(run); err != nil {
			a.logger.Error("Failed to record run: %v", err)
		}
	}
	if a.hub != nil {
		a.hub.SetRun(run)
	}
}

// finishRun stores the outcome of run. removed is what the sink actually
// discarded, which is less than the marked count when it failed partway.
// History failures are logged, never returned, so they cannot undo a
// completed prune.
func (a *App) finishRun(run *models.Run, report *prune.Report, removed int, runErr error) {
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Status = models.RunStatusFinished
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
	}
	if report != nil {
		run.Frames = report.Frames
		run.MeanProbability = report.Stats.MeanProbability
		run.StdDevProbability = report.Stats.StdDevProbability
		run.MaxProbability = report.Stats.MaxProbability
		run.CategoryCounts = categoryCounts(report.Summary)
	}
	run.Discarded = removed
	metrics.RunsTotal.WithLabelValues(run.Status).Inc()

	if a.runs != nil {
		if report != nil && len(report.Results) > 0 {
			if err := a.verdicts.InsertBatch(toVerdicts(run.ID, report.Results)); err != nil {
				a.logger.Error("Failed to record verdicts: %v", err)
			}
		}
		if err := a.runs.Finish(run); err != nil {
			a.logger.Error("Failed to record run outcome: %v", err)
		}
	}
	if a.hub != nil {
		a.hub.FinishRun(run)
	}
}

func toVerdicts(runID string, results []prune.FrameResult) []models.Verdict {
	out := make([]models.Verdict, 0, len(results))
	for _, r := range results {
		out = append(out, models.Verdict{
			RunID:        runID,
			FrameIndex:   r.Index,
			Filename:     r.Name,
			NextFilename: r.Next,
			Category:     r.Verdict.Category.String(),
			Discarded:    r.Verdict.Discard,
			Probability:  r.Verdict.Probability,
			Score:        r.Score,
			Regions:      r.Regions,
			TotalRegions: r.TotalRegions,
			HashDistance: r.HashDistance,
		})
	}
	return out
}

func categoryCounts(s detection.Summary) map[string]int {
	counts := make(map[string]int, len(s.Counts))
	for c, n := range s.Counts {
		counts[c.String()] = n
	}
	return counts
}

// printReport writes the per-category tally and the deletion totals.
func printReport(w io.Writer, report *prune.Report, dryRun bool) {
	s := report.Summary
	fmt.Fprintf(w, "Discarded images because of no observable changes %d\n", s.Count(detection.NoChange))
	fmt.Fprintf(w, "Discarded images because of climatic changes %d\n", s.Count(detection.Climatic))
	fmt.Fprintf(w, "Discarded images because of minor sunlight changes %d\n", s.Count(detection.MinorSunlight))
	fmt.Fprintf(w, "Changes due to vehicle movements %d\n", s.Count(detection.Car))
	fmt.Fprintf(w, "Changes due to movements in front of the camera %d\n", s.Count(detection.InFrontOfCamera))
	fmt.Fprintf(w, "Changes due to movements of person %d\n", s.Count(detection.Person))
	fmt.Fprintf(w, "Unclassified changes %d\n", s.Count(detection.Unclassified))

	label := "Deleted"
	if dryRun {
		label = "Would delete"
	}
	fmt.Fprintf(w, "%s images = %d\n", label, s.Discarded)
	fmt.Fprintf(w, "Kept images = %d\n", s.Kept(report.Frames))
	fmt.Fprintf(w, "Percentage of deleted images = %.2f\n", s.DiscardedPercent(report.Frames))
	fmt.Fprintf(w, "Change probability: mean %.4f, stddev %.4f, max %.4f\n",
		report.Stats.MeanProbability, report.Stats.StdDevProbability, report.Stats.MaxProbability)
}
