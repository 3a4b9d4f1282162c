package model

import "time"

// RunStatus represents the state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// StageStatus represents the outcome of a single pipeline stage.
type StageStatus string

const (
	StageStatusComplete StageStatus = "complete"
	StageStatusFailed   StageStatus = "failed"
)

// Run is one pipeline execution recorded in the run catalog.
type Run struct {
	ID         string        `json:"id"`
	Status     RunStatus     `json:"status"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Stages     []StageResult `json:"stages,omitempty"`
}

// StageResult is the recorded outcome of one stage within a run.
type StageResult struct {
	Name       string         `json:"name"`
	Status     StageStatus    `json:"status"`
	DurationMS int64          `json:"duration_ms"`
	Counters   map[string]int `json:"counters,omitempty"`
	Error      string         `json:"error,omitempty"`
}
