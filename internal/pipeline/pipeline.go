// Package pipeline orchestrates the retrieve, merge, and export stages and
// records their outcomes in the run catalog.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/worldhelipads/helipad-cli/internal/export"
	"github.com/worldhelipads/helipad-cli/internal/merge"
	"github.com/worldhelipads/helipad-cli/internal/model"
	"github.com/worldhelipads/helipad-cli/internal/retrieve"
	"github.com/worldhelipads/helipad-cli/internal/store"
)

// Stage names as recorded in the run catalog.
const (
	StageRetrieve = "retrieve"
	StageMerge    = "merge"
	StageExport   = "export"
)

// Runner executes the full pipeline.
type Runner struct {
	store    store.Store
	retrieve *retrieve.Stage
	merge    *merge.Stage
	export   *export.Stage
}

// New creates a Runner with all stages wired.
func New(st store.Store, r *retrieve.Stage, m *merge.Stage, e *export.Stage) *Runner {
	return &Runner{store: st, retrieve: r, merge: m, export: e}
}

// Run executes retrieve, merge, and export in order. The first stage failure
// aborts the run; the failure is recorded in the catalog and returned.
// Catalog write failures are logged and never abort the pipeline.
func (r *Runner) Run(ctx context.Context) (*model.Run, error) {
	log := zap.L().With(zap.String("component", "pipeline"))

	run, err := r.store.CreateRun(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	log.Info("pipeline: starting run", zap.String("run_id", run.ID))

	stages := []struct {
		name string
		fn   func(context.Context) (map[string]int, error)
	}{
		{StageRetrieve, r.runRetrieve},
		{StageMerge, r.runMerge},
		{StageExport, r.runExport},
	}

	for _, stage := range stages {
		start := time.Now()
		counters, stageErr := stage.fn(ctx)
		result := model.StageResult{
			Name:       stage.name,
			Status:     model.StageStatusComplete,
			DurationMS: time.Since(start).Milliseconds(),
			Counters:   counters,
		}
		if stageErr != nil {
			result.Status = model.StageStatusFailed
			result.Error = stageErr.Error()
		}

		if recErr := r.store.RecordStage(ctx, run.ID, result); recErr != nil {
			log.Warn("pipeline: failed to record stage",
				zap.String("stage", stage.name), zap.Error(recErr))
		}

		if stageErr != nil {
			log.Error("pipeline: stage failed",
				zap.String("stage", stage.name),
				zap.Int64("duration_ms", result.DurationMS),
				zap.Error(stageErr),
			)
			if cErr := r.store.CompleteRun(ctx, run.ID, model.RunStatusFailed, stageErr.Error()); cErr != nil {
				log.Warn("pipeline: failed to mark run failed", zap.Error(cErr))
			}
			return run, eris.Wrapf(stageErr, "pipeline: stage %s", stage.name)
		}

		run.Stages = append(run.Stages, result)
		log.Info("pipeline: stage complete",
			zap.String("stage", stage.name),
			zap.Int64("duration_ms", result.DurationMS),
		)
	}

	if err := r.store.CompleteRun(ctx, run.ID, model.RunStatusComplete, ""); err != nil {
		log.Warn("pipeline: failed to mark run complete", zap.Error(err))
	}
	run.Status = model.RunStatusComplete
	log.Info("pipeline: run complete", zap.String("run_id", run.ID))
	return run, nil
}

func (r *Runner) runRetrieve(ctx context.Context) (map[string]int, error) {
	stats, err := r.retrieve.Run(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]int{
		"openaip_downloaded":  stats.OpenAIPDownloaded,
		"openaip_cached":      stats.OpenAIPCached,
		"overpass_downloaded": stats.OverpassDownloaded,
		"overpass_cached":     stats.OverpassCached,
	}, nil
}

func (r *Runner) runMerge(ctx context.Context) (map[string]int, error) {
	stats, err := r.merge.Run(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]int{
		"openaip_records": stats.OpenAIPRecords,
		"osm_records":     stats.OSMRecords,
		"dropped":         stats.Dropped,
		"merged_pairs":    stats.MergedPairs,
		"duplicates":      stats.Duplicates,
		"output":          stats.Output,
		"hospital_tagged": stats.HospitalTagged,
		"offshore_tagged": stats.OffshoreTagged,
	}, nil
}

func (r *Runner) runExport(ctx context.Context) (map[string]int, error) {
	stats, err := r.export.Run(ctx)
	if err != nil {
		return nil, err
	}
	counters := map[string]int{"exported": stats.Exported}
	for region, n := range stats.PerRegion {
		counters[region] = n
	}
	return counters, nil
}
