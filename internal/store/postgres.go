package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/worldhelipads/helipad-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 5
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	error       TEXT,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS run_stages (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL REFERENCES runs(id),
	name        TEXT NOT NULL,
	status      TEXT NOT NULL,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	counters    JSONB,
	error       TEXT,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_run_stages_run_id ON run_stages(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES ($1, $2, $3)`,
		id, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Status:    model.RunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *PostgresStore) RecordStage(ctx context.Context, runID string, stage model.StageResult) error {
	countersJSON, err := json.Marshal(stage.Counters)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal counters")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO run_stages (id, run_id, name, status, duration_ms, counters, error) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), runID, stage.Name, string(stage.Status), stage.DurationMS, countersJSON, stage.Error,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert stage %s", stage.Name)
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, finished_at = $3 WHERE id = $4`,
		string(status), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, status, error, started_at, finished_at FROM runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var (
			run      model.Run
			errMsg   *string
			finished *time.Time
		)
		if err := rows.Scan(&run.ID, &run.Status, &errMsg, &run.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if errMsg != nil {
			run.Error = *errMsg
		}
		run.FinishedAt = finished
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate runs")
	}

	for i := range runs {
		stages, err := s.listStages(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Stages = stages
	}
	return runs, nil
}

func (s *PostgresStore) listStages(ctx context.Context, runID string) ([]model.StageResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, status, duration_ms, counters, error FROM run_stages WHERE run_id = $1 ORDER BY recorded_at`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list stages %s", runID)
	}
	defer rows.Close()

	var stages []model.StageResult
	for rows.Next() {
		var (
			stage    model.StageResult
			counters []byte
			errMsg   *string
		)
		if err := rows.Scan(&stage.Name, &stage.Status, &stage.DurationMS, &counters, &errMsg); err != nil {
			return nil, eris.Wrap(err, "postgres: scan stage")
		}
		if errMsg != nil {
			stage.Error = *errMsg
		}
		if len(counters) > 0 && string(counters) != "null" {
			if err := json.Unmarshal(counters, &stage.Counters); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal counters")
			}
		}
		stages = append(stages, stage)
	}
	return stages, eris.Wrap(rows.Err(), "postgres: iterate stages")
}
