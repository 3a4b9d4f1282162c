package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/worldhelipads/helipad-cli/internal/config"
	"github.com/worldhelipads/helipad-cli/internal/export"
	"github.com/worldhelipads/helipad-cli/internal/merge"
	"github.com/worldhelipads/helipad-cli/internal/model"
	"github.com/worldhelipads/helipad-cli/internal/retrieve"
	"github.com/worldhelipads/helipad-cli/pkg/overpass"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// memStore is an in-memory Store for pipeline tests.
type memStore struct {
	runs   map[string]*model.Run
	stages map[string][]model.StageResult
}

func newMemStore() *memStore {
	return &memStore{runs: make(map[string]*model.Run), stages: make(map[string][]model.StageResult)}
}

func (m *memStore) CreateRun(ctx context.Context) (*model.Run, error) {
	run := &model.Run{ID: uuid.New().String(), Status: model.RunStatusRunning, StartedAt: time.Now().UTC()}
	m.runs[run.ID] = run
	return &model.Run{ID: run.ID, Status: run.Status, StartedAt: run.StartedAt}, nil
}

func (m *memStore) RecordStage(ctx context.Context, runID string, stage model.StageResult) error {
	m.stages[runID] = append(m.stages[runID], stage)
	return nil
}

func (m *memStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, errMsg string) error {
	run, ok := m.runs[runID]
	if !ok {
		return eris.Errorf("run %s not found", runID)
	}
	now := time.Now().UTC()
	run.Status = status
	run.Error = errMsg
	run.FinishedAt = &now
	return nil
}

func (m *memStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	var runs []model.Run
	for _, run := range m.runs {
		r := *run
		r.Stages = m.stages[r.ID]
		runs = append(runs, r)
	}
	return runs, nil
}

func (m *memStore) Migrate(ctx context.Context) error { return nil }
func (m *memStore) Close() error                      { return nil }

type fakeOpenAIP struct{}

func (fakeOpenAIP) ListObjects(ctx context.Context, suffix string) ([]string, error) {
	return []string{"ch_apt.json"}, nil
}

func (fakeOpenAIP) DownloadObject(ctx context.Context, name, destPath string) error {
	dump := `[{"_id": "A1", "name": "Alpine Pad", "type": 7,
		"geometry": {"type": "Point", "coordinates": [8.0, 46.5]},
		"elevation": {"value": 447, "unit": 0}}]`
	return os.WriteFile(destPath, []byte(dump), 0644)
}

type fakeOverpass struct{ fail bool }

func (f fakeOverpass) Query(ctx context.Context, query string) (*overpass.Response, error) {
	if f.fail {
		return nil, eris.New("interpreter overloaded")
	}
	lat, lon := 46.50001, 8.00001
	return &overpass.Response{Elements: []overpass.Element{
		{Type: "node", ID: 1, Lat: &lat, Lon: &lon, Tags: map[string]string{"surface": "concrete"}},
	}}, nil
}

func (f fakeOverpass) QueryBBox(ctx context.Context, template string, bbox overpass.BBox) (*overpass.Response, error) {
	return f.Query(ctx, overpass.ExpandQuery(template, bbox))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Data.RawDir = t.TempDir()
	cfg.Data.IntermediateDir = t.TempDir()
	cfg.Data.ExportDir = t.TempDir()
	cfg.OpenAIP.Suffix = "_apt.json"
	cfg.Overpass.LatDivisions = 1
	cfg.Overpass.LonDivisions = 1
	cfg.Merge.DuplicateRadiusM = 50
	cfg.Merge.HospitalRadiusM = 500
	cfg.Merge.OffshoreRadiusM = 250
	return cfg
}

func newRunner(cfg *config.Config, st *memStore, op fakeOverpass) *Runner {
	return New(st,
		retrieve.New(cfg, fakeOpenAIP{}, op),
		merge.New(cfg),
		export.New(cfg),
	)
}

func TestRunnerFullPipeline(t *testing.T) {
	cfg := testConfig(t)
	st := newMemStore()

	run, err := newRunner(cfg, st, fakeOverpass{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.Len(t, run.Stages, 3)

	// The catalog saw all three stages succeed.
	recorded := st.stages[run.ID]
	require.Len(t, recorded, 3)
	assert.Equal(t, StageRetrieve, recorded[0].Name)
	assert.Equal(t, StageMerge, recorded[1].Name)
	assert.Equal(t, StageExport, recorded[2].Name)
	for _, stage := range recorded {
		assert.Equal(t, model.StageStatusComplete, stage.Status)
	}

	assert.Equal(t, 1, recorded[0].Counters["openaip_downloaded"])
	// The OpenAIP heliport and the OSM node ~1.5 m away merge into one site.
	assert.Equal(t, 1, recorded[1].Counters["merged_pairs"])
	assert.Equal(t, 1, recorded[1].Counters["output"])
	assert.Equal(t, 1, recorded[2].Counters["exported"])

	assert.Equal(t, model.RunStatusComplete, st.runs[run.ID].Status)
	require.NotNil(t, st.runs[run.ID].FinishedAt)

	// Region 2 carries the merged site; the other exports are header-only.
	for _, region := range export.Regions {
		assert.FileExists(t, filepath.Join(cfg.Data.ExportDir, region.FileName()))
	}
}

func TestRunnerStageFailureAbortsRun(t *testing.T) {
	cfg := testConfig(t)
	st := newMemStore()

	run, err := newRunner(cfg, st, fakeOverpass{fail: true}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieve")

	// The failed stage is recorded and the run is marked failed.
	recorded := st.stages[run.ID]
	require.Len(t, recorded, 1)
	assert.Equal(t, StageRetrieve, recorded[0].Name)
	assert.Equal(t, model.StageStatusFailed, recorded[0].Status)
	assert.Contains(t, recorded[0].Error, "interpreter overloaded")

	assert.Equal(t, model.RunStatusFailed, st.runs[run.ID].Status)
	assert.NotEmpty(t, st.runs[run.ID].Error)

	// Merge and export never ran.
	assert.NoFileExists(t, filepath.Join(cfg.Data.IntermediateDir, merge.IntermediateCSV))
}

func TestRunnerCreateRunFailure(t *testing.T) {
	cfg := testConfig(t)
	st := failingStore{}

	_, err := newRunnerWithStore(cfg, st).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create run")
}

type failingStore struct{}

func (failingStore) CreateRun(ctx context.Context) (*model.Run, error) {
	return nil, eris.New("catalog unavailable")
}

func (failingStore) RecordStage(ctx context.Context, runID string, stage model.StageResult) error {
	return nil
}

func (failingStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, errMsg string) error {
	return nil
}

func (failingStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) { return nil, nil }
func (failingStore) Migrate(ctx context.Context) error                           { return nil }
func (failingStore) Close() error                                                { return nil }

func newRunnerWithStore(cfg *config.Config, st failingStore) *Runner {
	return New(st,
		retrieve.New(cfg, fakeOpenAIP{}, fakeOverpass{}),
		merge.New(cfg),
		export.New(cfg),
	)
}
