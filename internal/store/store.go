package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/belegwerk/belegscan/internal/model"
)

// ErrNotFound is returned when no run matches the given ID.
var ErrNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing scan runs.
type RunFilter struct {
	Status   model.RunStatus `json:"status,omitempty"`
	InputDir string          `json:"input_dir,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// RunStats aggregates all recorded runs.
type RunStats struct {
	Runs     int       `json:"runs"`
	Files    int       `json:"files"`
	Amounts  int       `json:"amounts"`
	Periods  int       `json:"periods"`
	Failures int       `json:"failures"`
	LastRun  time.Time `json:"last_run,omitempty"`
}

// Store defines the persistence interface for scan history.
type Store interface {
	// SaveRun records a finished run. An empty run ID is filled in.
	SaveRun(ctx context.Context, run *model.ScanRun) error
	// GetRun fetches a run by ID or unique ID prefix.
	GetRun(ctx context.Context, runID string) (*model.ScanRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.ScanRun, error)
	Stats(ctx context.Context) (*RunStats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
