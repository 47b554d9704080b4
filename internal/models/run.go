package models

import "time"

// Run is one pass of the pruner over an image directory.
type Run struct {
	ID                string         `json:"id"`
	Directory         string         `json:"directory"`
	StartedAt         time.Time      `json:"started_at"`
	FinishedAt        *time.Time     `json:"finished_at,omitempty"`
	Status            string         `json:"status"`
	DryRun            bool           `json:"dry_run"`
	Frames            int            `json:"frames"`
	Discarded         int            `json:"discarded"`
	MeanProbability   float64        `json:"mean_probability"`
	StdDevProbability float64        `json:"stddev_probability"`
	MaxProbability    float64        `json:"max_probability"`
	Error             string         `json:"error,omitempty"`
	CategoryCounts    map[string]int `json:"category_counts,omitempty"`
}

// Run statuses.
const (
	RunStatusRunning  = "running"
	RunStatusFinished = "finished"
	RunStatusFailed   = "failed"
)

// RunFilter contains filtering options for listing runs.
type RunFilter struct {
	Directory string
	Status    string
	Limit     int
	Offset    int
}
