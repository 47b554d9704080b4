package dto

import (
	"encoding/json"
	"time"

	"framepruner/internal/models"
	"framepruner/internal/prune"
)

// Progress event types.
const (
	EventRunStarted  = "run_started"
	EventFrame       = "frame"
	EventRunFinished = "run_finished"
)

// ProgressEvent is one message on the progress stream.
type ProgressEvent struct {
	Type  string             `json:"type"`
	RunID string             `json:"run_id,omitempty"`
	Time  time.Time          `json:"time"`
	Frame *prune.FrameResult `json:"frame,omitempty"`
	Run   *models.Run        `json:"run,omitempty"`
}

// MarshalJSON formats the event time as RFC 3339 with milliseconds.
func (e ProgressEvent) MarshalJSON() ([]byte, error) {
	type Alias ProgressEvent
	return json.Marshal(&struct {
		Time string `json:"time"`
		Alias
	}{
		Time:  e.Time.Format("2006-01-02T15:04:05.000Z07:00"),
		Alias: (Alias)(e),
	})
}

// FrameEvent wraps a scored frame.
func FrameEvent(runID string, result prune.FrameResult) ProgressEvent {
	return ProgressEvent{Type: EventFrame, RunID: runID, Time: time.Now(), Frame: &result}
}

// RunEvent wraps a run state change.
func RunEvent(eventType string, run *models.Run) ProgressEvent {
	return ProgressEvent{Type: eventType, RunID: run.ID, Time: time.Now(), Run: run}
}
