// Package store persists the pipeline run catalog.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/worldhelipads/helipad-cli/internal/model"
)

// Store defines the persistence interface for the run catalog.
type Store interface {
	// CreateRun inserts a new running run and returns it.
	CreateRun(ctx context.Context) (*model.Run, error)

	// RecordStage appends a stage result to a run.
	RecordStage(ctx context.Context, runID string, stage model.StageResult) error

	// CompleteRun marks a run complete or failed. errMsg is empty on success.
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, errMsg string) error

	// ListRuns returns the most recent runs, newest first, with their stages.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Pool is the subset of pgxpool.Pool the postgres store uses; pgxmock
// satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}
