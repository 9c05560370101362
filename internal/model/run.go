package model

import "time"

// RunStatus represents the final state of a scan run.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// ScanRun records one batch scan for the history store.
type ScanRun struct {
	ID         string    `json:"id"`
	InputDir   string    `json:"input_dir"`
	OutputPath string    `json:"output_path"`
	Format     string    `json:"format"`
	Status     RunStatus `json:"status"`
	Files      int       `json:"files"`
	Amounts    int       `json:"amounts"`
	Periods    int       `json:"periods"`
	Failures   int       `json:"failures"`
	Results    []Result  `json:"results,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
