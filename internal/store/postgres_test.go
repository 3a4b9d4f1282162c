package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/worldhelipads/helipad-cli/internal/model"
)

func init() {
	// Replace global logger with a no-op to avoid nil pointer panics in tests.
	zap.ReplaceGlobals(zap.NewNop())
}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresMigrate(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS runs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateRun(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO runs").
		WithArgs(pgxmock.AnyArg(), "running", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := st.CreateRun(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordStage(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO run_stages").
		WithArgs(pgxmock.AnyArg(), "run-1", "merge", "complete", int64(88),
			[]byte(`{"output":42}`), "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := st.RecordStage(context.Background(), "run-1", model.StageResult{
		Name:       "merge",
		Status:     model.StageStatusComplete,
		DurationMS: 88,
		Counters:   map[string]int{"output": 42},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompleteRun(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec("UPDATE runs SET").
		WithArgs("complete", "", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, st.CompleteRun(context.Background(), "run-1", model.RunStatusComplete, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompleteUnknownRun(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec("UPDATE runs SET").
		WithArgs("failed", "boom", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := st.CompleteRun(context.Background(), "missing", model.RunStatusFailed, "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPostgresListRuns(t *testing.T) {
	st, mock := newMockStore(t)

	started := time.Now().UTC()
	finished := started.Add(2 * time.Minute)

	mock.ExpectQuery("SELECT id, status, error, started_at, finished_at FROM runs").
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "status", "error", "started_at", "finished_at"},
		).AddRow("run-1", model.RunStatusComplete, (*string)(nil), started, &finished))

	mock.ExpectQuery("SELECT name, status, duration_ms, counters, error FROM run_stages").
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows(
			[]string{"name", "status", "duration_ms", "counters", "error"},
		).AddRow("retrieve", model.StageStatusComplete, int64(1500), []byte(`{"overpass_downloaded":648}`), (*string)(nil)))

	runs, err := st.ListRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Empty(t, run.Error)
	require.NotNil(t, run.FinishedAt)

	require.Len(t, run.Stages, 1)
	assert.Equal(t, "retrieve", run.Stages[0].Name)
	assert.Equal(t, int64(1500), run.Stages[0].DurationMS)
	assert.Equal(t, 648, run.Stages[0].Counters["overpass_downloaded"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
