package models

import "time"

// RunStatus represents the lifecycle state of a training run
type RunStatus string

const (
	RunStatusRunning  RunStatus = "RUNNING"  // Run started, still logging
	RunStatusFinished RunStatus = "FINISHED" // Run completed successfully
	RunStatusFailed   RunStatus = "FAILED"   // Run aborted with an error
)

// Terminal reports whether the status is final. Params, metrics and
// artifacts of a terminal run are immutable.
func (s RunStatus) Terminal() bool {
	return s == RunStatusFinished || s == RunStatusFailed
}

// Run represents a single execution of the training pipeline together with
// everything recorded during it: parameters, metrics and the model artifact.
type Run struct {
	ID           string             `json:"id"`
	Experiment   string             `json:"experiment"`
	Status       RunStatus          `json:"status"`
	StartedAt    time.Time          `json:"started_at"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
	Params       map[string]string  `json:"params,omitempty"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	ArtifactPath string             `json:"artifact_path,omitempty"`
	ErrorMessage string             `json:"error_message,omitempty"`
}
