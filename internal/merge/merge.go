// Package merge implements pipeline stage 2: normalizing the raw source
// datasets, deduplicating sites reported by both sources, and writing the
// unified intermediate dataset.
package merge

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/worldhelipads/helipad-cli/internal/config"
	"github.com/worldhelipads/helipad-cli/internal/model"
	"github.com/worldhelipads/helipad-cli/internal/retrieve"
)

// Intermediate dataset file names, read back by the export stage.
const (
	IntermediateCSV     = "helipads.csv"
	IntermediateGeoJSON = "helipads.geojson"
)

// Stats summarizes a merge run.
type Stats struct {
	OpenAIPRecords int `json:"openaip_records"`
	OSMRecords     int `json:"osm_records"`
	Dropped        int `json:"dropped"`
	MergedPairs    int `json:"merged_pairs"`
	Duplicates     int `json:"duplicates"`
	Output         int `json:"output"`
	HospitalTagged int `json:"hospital_tagged"`
	OffshoreTagged int `json:"offshore_tagged"`
}

// Stage builds the unified dataset from the raw files.
type Stage struct {
	cfg *config.Config
}

// New creates the merge stage.
func New(cfg *config.Config) *Stage {
	return &Stage{cfg: cfg}
}

// Run normalizes, dedupes, annotates, and writes the intermediate dataset.
// Existing intermediate files are overwritten.
func (s *Stage) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	raw := s.cfg.Data.RawDir

	openaipRecs, droppedOA, err := LoadOpenAIP(ctx, filepath.Join(raw, retrieve.OpenAIPDir))
	if err != nil {
		return nil, err
	}
	osmRecs, droppedOSM, err := LoadOSMHelipads(ctx, filepath.Join(raw, retrieve.OSMDir, retrieve.HeliDir))
	if err != nil {
		return nil, err
	}
	stats.OpenAIPRecords = len(openaipRecs)
	stats.OSMRecords = len(osmRecs)
	stats.Dropped = droppedOA + droppedOSM

	merged, pairs, duplicates := Dedupe(openaipRecs, osmRecs, s.cfg.Merge.DuplicateRadiusM)
	stats.MergedPairs = pairs
	stats.Duplicates = duplicates
	stats.Output = len(merged)

	hospitals, err := LoadProximityPoints(ctx, filepath.Join(raw, retrieve.OSMDir, retrieve.HospitalDir))
	if err != nil {
		return nil, err
	}
	offshore, err := LoadProximityPoints(ctx, filepath.Join(raw, retrieve.OSMDir, retrieve.OffshoreDir))
	if err != nil {
		return nil, err
	}
	stats.HospitalTagged, stats.OffshoreTagged = Annotate(
		merged, hospitals, offshore,
		s.cfg.Merge.HospitalRadiusM, s.cfg.Merge.OffshoreRadiusM,
	)

	if err := os.MkdirAll(s.cfg.Data.IntermediateDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "merge: create intermediate dir")
	}
	if err := writeCSV(filepath.Join(s.cfg.Data.IntermediateDir, IntermediateCSV), merged); err != nil {
		return nil, err
	}
	if err := writeGeoJSON(filepath.Join(s.cfg.Data.IntermediateDir, IntermediateGeoJSON), merged); err != nil {
		return nil, err
	}

	zap.L().Info("merge: complete",
		zap.Int("openaip_records", stats.OpenAIPRecords),
		zap.Int("osm_records", stats.OSMRecords),
		zap.Int("dropped", stats.Dropped),
		zap.Int("merged_pairs", stats.MergedPairs),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("output", stats.Output),
		zap.Int("hospital_tagged", stats.HospitalTagged),
		zap.Int("offshore_tagged", stats.OffshoreTagged),
	)
	return stats, nil
}

func writeCSV(path string, records []model.MergedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "merge: create intermediate csv")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)

	// The encoder only emits the header on the first Encode; an empty dataset
	// still needs one so the export stage can read the file.
	if len(records) == 0 {
		if err := enc.EncodeHeader(model.MergedRow{}); err != nil {
			return eris.Wrap(err, "merge: encode csv header")
		}
	}
	for i := range records {
		row := records[i].Row()
		if err := enc.Encode(row); err != nil {
			return eris.Wrap(err, "merge: encode csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "merge: flush intermediate csv")
	}
	return nil
}
