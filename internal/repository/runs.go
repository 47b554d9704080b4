package repository

import "framepruner/internal/models"

// RunRepository defines the interface for run history operations.
type RunRepository interface {
	// Create operations
	Insert(run *models.Run) error

	// Update operations
	Finish(run *models.Run) error

	// Read operations
	GetByID(id string) (*models.Run, error)
	GetAll(filter *models.RunFilter) ([]models.Run, error)

	// Delete operations
	Delete(id string) error
}

// VerdictRepository defines the interface for per-frame verdict operations.
type VerdictRepository interface {
	// Create operations
	InsertBatch(verdicts []models.Verdict) error

	// Read operations
	GetByRunID(runID string, discardedOnly bool) ([]models.Verdict, error)
	GetCategoryCounts(runID string) (map[string]int, error)
}
