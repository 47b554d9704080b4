package dto

import "framepruner/internal/models"

// RunsPage is a paginated list of runs.
type RunsPage struct {
	Runs        []models.Run `json:"runs"`
	CurrentPage int          `json:"currentPage"`
	Limit       int          `json:"pageSize"`
}

// RunDetail is a run with its per-frame verdicts.
type RunDetail struct {
	Run      *models.Run      `json:"run"`
	Verdicts []models.Verdict `json:"verdicts"`
}
