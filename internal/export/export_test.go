package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/jszwec/csvutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldhelipads/helipad-cli/internal/config"
	"github.com/worldhelipads/helipad-cli/internal/merge"
	"github.com/worldhelipads/helipad-cli/internal/model"
)

func writeIntermediate(t *testing.T, dir string, records []model.MergedRecord) {
	t.Helper()

	f, err := os.Create(filepath.Join(dir, merge.IntermediateCSV))
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	for i := range records {
		require.NoError(t, enc.Encode(records[i].Row()))
	}
	w.Flush()
	require.NoError(t, w.Error())
}

func mergedAt(id, name string, lat, lon float64) model.MergedRecord {
	return model.MergedRecord{
		HelipadRecord: model.HelipadRecord{
			SourceID: id, Source: model.SourceOSM, Name: name, Lat: lat, Lon: lon,
		},
		SourceIDs: []string{id},
	}
}

func TestStageRunPartitionsByRegion(t *testing.T) {
	intermediateDir := t.TempDir()
	exportDir := t.TempDir()

	writeIntermediate(t, intermediateDir, []model.MergedRecord{
		mergedAt("node/1", "New York Pad", 40.7, -74.0),
		mergedAt("node/2", "Bern Pad", 46.9, 7.4),
		mergedAt("node/3", "Tokyo Pad", 35.7, 139.7),
		mergedAt("node/4", "London Pad", 51.5, -0.1),
	})

	cfg := &config.Config{}
	cfg.Data.IntermediateDir = intermediateDir
	cfg.Data.ExportDir = exportDir

	stats, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Exported)
	assert.Equal(t, 1, stats.PerRegion["Region 1"])
	assert.Equal(t, 2, stats.PerRegion["Region 2"])
	assert.Equal(t, 1, stats.PerRegion["Region 3"])

	points := readUserpoints(t, filepath.Join(exportDir, "export_lnm_region_2.csv"))
	require.Len(t, points, 2)
	assert.Equal(t, "Bern Pad", points[0].Name)
	assert.Equal(t, "Region 2", points[0].Region)
	assert.Equal(t, "Helipad", points[0].Type)
}

func TestStageRunWritesEmptyRegions(t *testing.T) {
	intermediateDir := t.TempDir()
	exportDir := t.TempDir()

	// Everything in the Americas; the other two files still get headers.
	writeIntermediate(t, intermediateDir, []model.MergedRecord{
		mergedAt("node/1", "Pad", 40.0, -90.0),
	})

	cfg := &config.Config{}
	cfg.Data.IntermediateDir = intermediateDir
	cfg.Data.ExportDir = exportDir

	stats, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Exported)

	for _, region := range Regions {
		path := filepath.Join(exportDir, region.FileName())
		require.FileExists(t, path)

		points := readUserpoints(t, path)
		if region == RegionAmericas {
			assert.Len(t, points, 1)
		} else {
			assert.Empty(t, points)
		}
	}
}

func TestStageRunHeaderColumns(t *testing.T) {
	intermediateDir := t.TempDir()
	exportDir := t.TempDir()
	// A nil dataset leaves the intermediate file without even a header row;
	// the stage treats it as empty rather than failing.
	writeIntermediate(t, intermediateDir, nil)

	cfg := &config.Config{}
	cfg.Data.IntermediateDir = intermediateDir
	cfg.Data.ExportDir = exportDir

	stats, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Exported)

	f, err := os.Open(filepath.Join(exportDir, "export_lnm_region_1.csv"))
	require.NoError(t, err)
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Type", "Name", "Ident", "Latitude", "Longitude", "Elevation",
		"Magnetic Declination", "Tags", "Description", "Region", "Visible From",
	}, header)
}

func TestStageRunMissingIntermediate(t *testing.T) {
	cfg := &config.Config{}
	cfg.Data.IntermediateDir = t.TempDir()
	cfg.Data.ExportDir = t.TempDir()

	_, err := New(cfg).Run(context.Background())
	assert.Error(t, err)
}

func readUserpoints(t *testing.T, path string) []Userpoint {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	data, err := csvutil.NewDecoder(csv.NewReader(f))
	require.NoError(t, err)

	var points []Userpoint
	for {
		var up Userpoint
		if err := data.Decode(&up); err != nil {
			break
		}
		points = append(points, up)
	}
	return points
}
