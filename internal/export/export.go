// Package export implements pipeline stage 3: partitioning the unified
// dataset into longitude regions and writing LittleNavMap userpoint CSVs.
package export

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/worldhelipads/helipad-cli/internal/config"
	"github.com/worldhelipads/helipad-cli/internal/merge"
	"github.com/worldhelipads/helipad-cli/internal/model"
)

// Stats summarizes an export run.
type Stats struct {
	Exported  int            `json:"exported"`
	PerRegion map[string]int `json:"per_region"`
}

// Stage writes the per-region userpoint files.
type Stage struct {
	cfg *config.Config
}

// New creates the export stage.
func New(cfg *config.Config) *Stage {
	return &Stage{cfg: cfg}
}

// Run reads the intermediate dataset and writes one userpoint CSV per region.
// All three region files are written every run, empty regions included, and
// existing exports are overwritten.
func (s *Stage) Run(ctx context.Context) (*Stats, error) {
	records, err := readIntermediate(filepath.Join(s.cfg.Data.IntermediateDir, merge.IntermediateCSV))
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, eris.Wrap(ctx.Err(), "export: context cancelled")
	}

	buckets := make(map[Region][]Userpoint, len(Regions))
	for i := range records {
		up := FromMerged(&records[i])
		region := AssignRegion(records[i].Lon)
		buckets[region] = append(buckets[region], up)
	}

	if err := os.MkdirAll(s.cfg.Data.ExportDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "export: create export dir")
	}

	stats := &Stats{PerRegion: make(map[string]int, len(Regions))}
	for _, region := range Regions {
		points := buckets[region]
		path := filepath.Join(s.cfg.Data.ExportDir, region.FileName())
		if err := writeUserpoints(path, points); err != nil {
			return nil, err
		}
		stats.PerRegion[region.String()] = len(points)
		stats.Exported += len(points)
	}

	zap.L().Info("export: complete",
		zap.Int("exported", stats.Exported),
		zap.Any("per_region", stats.PerRegion),
	)
	return stats, nil
}

func readIntermediate(path string) ([]model.MergedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: open intermediate dataset")
	}
	defer f.Close() //nolint:errcheck

	dec, err := csvutil.NewDecoder(csv.NewReader(f))
	if err == io.EOF {
		// A file without even a header is an empty dataset, not a failure.
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "export: read intermediate header")
	}

	var records []model.MergedRecord
	for {
		var row model.MergedRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "export: decode intermediate row")
		}
		records = append(records, row.Record())
	}
	return records, nil
}

func writeUserpoints(path string, points []Userpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create region file")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)

	// Write the header even when the region is empty.
	if len(points) == 0 {
		if err := enc.EncodeHeader(Userpoint{}); err != nil {
			return eris.Wrap(err, "export: encode header")
		}
	}
	for i := range points {
		if err := enc.Encode(points[i]); err != nil {
			return eris.Wrap(err, "export: encode userpoint")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush region file")
	}
	return nil
}
