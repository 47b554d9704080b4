package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"framepruner/internal/logger"
	"framepruner/internal/prune"
)

// Remover discards frames from a directory: it deletes them, moves them to a
// trash directory, or in dry-run mode only logs what it would do.
type Remover struct {
	dir      string
	trashDir string
	dryRun   bool
	logger   *logger.Logger

	mu      sync.Mutex
	removed int
}

// NewRemover creates a Remover for files in dir. An empty trashDir deletes.
func NewRemover(dir, trashDir string, dryRun bool, logger *logger.Logger) *Remover {
	return &Remover{
		dir:      dir,
		trashDir: trashDir,
		dryRun:   dryRun,
		logger:   logger,
	}
}

// Discard removes the frame described by result.
func (r *Remover) Discard(ctx context.Context, result prune.FrameResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	src := filepath.Join(r.dir, result.Name)

	if r.dryRun {
		r.logger.Info("Would discard %s (%s)", result.Name, result.Verdict.Category)
		r.removed++
		return nil
	}

	if r.trashDir != "" {
		if err := os.MkdirAll(r.trashDir, 0755); err != nil {
			return fmt.Errorf("failed to create trash directory: %w", err)
		}
		if err := os.Rename(src, filepath.Join(r.trashDir, result.Name)); err != nil {
			return fmt.Errorf("failed to move %s to trash: %w", result.Name, err)
		}
	} else if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove %s: %w", result.Name, err)
	}

	r.logger.Debug("Discarded %s (%s)", result.Name, result.Verdict.Category)
	r.removed++
	return nil
}

// Removed returns how many frames were discarded so far.
func (r *Remover) Removed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removed
}
