package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/worldhelipads/helipad-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	error       TEXT,
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS run_stages (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL REFERENCES runs(id),
	name        TEXT NOT NULL,
	status      TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	counters    TEXT,
	error       TEXT,
	recorded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_run_stages_run_id ON run_stages(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES (?, ?, ?)`,
		id, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Status:    model.RunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *SQLiteStore) RecordStage(ctx context.Context, runID string, stage model.StageResult) error {
	countersJSON, err := json.Marshal(stage.Counters)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal counters")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO run_stages (id, run_id, name, status, duration_ms, counters, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, stage.Name, string(stage.Status), stage.DurationMS, string(countersJSON), stage.Error,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert stage %s", stage.Name)
	}
	return nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(status), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run %s not found", runID)
	}
	return nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, error, started_at, finished_at FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		var (
			run      model.Run
			errMsg   sql.NullString
			finished sql.NullTime
		)
		if err := rows.Scan(&run.ID, &run.Status, &errMsg, &run.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		run.Error = errMsg.String
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate runs")
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

func (s *SQLiteStore) listStages(ctx context.Context, runID string) ([]model.StageResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, status, duration_ms, counters, error FROM run_stages WHERE run_id = ? ORDER BY recorded_at`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list stages %s", runID)
	}
	defer rows.Close() //nolint:errcheck

	var stages []model.StageResult
	for rows.Next() {
		var (
			stage    model.StageResult
			counters sql.NullString
			errMsg   sql.NullString
		)
		if err := rows.Scan(&stage.Name, &stage.Status, &stage.DurationMS, &counters, &errMsg); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan stage")
		}
		stage.Error = errMsg.String
		if counters.Valid && counters.String != "" && counters.String != "null" {
			if err := json.Unmarshal([]byte(counters.String), &stage.Counters); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal counters")
			}
		}
		stages = append(stages, stage)
	}
	return stages, eris.Wrap(rows.Err(), "sqlite: iterate stages")
}
