package merge

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/worldhelipads/helipad-cli/internal/fetcher"
	"github.com/worldhelipads/helipad-cli/internal/model"
	"github.com/worldhelipads/helipad-cli/pkg/openaip"
	"github.com/worldhelipads/helipad-cli/pkg/overpass"
)

// LoadOpenAIP reads all raw OpenAIP dump files in dir and normalizes heliport
// entries into HelipadRecords. Records without usable coordinates are dropped
// and counted, not fatal.
func LoadOpenAIP(ctx context.Context, dir string) ([]model.HelipadRecord, int, error) {
	files, err := listJSONFiles(dir)
	if err != nil {
		return nil, 0, err
	}

	var records []model.HelipadRecord
	dropped := 0

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, dropped, eris.Wrapf(err, "merge: open %s", path)
		}

		airports, errCh := fetcher.DecodeJSONArray[openaip.Airport](ctx, f)
		for airport := range airports {
			if !airport.IsHeliport() {
				continue
			}
			rec := normalizeOpenAIP(&airport)
			if err := rec.Validate(); err != nil {
				dropped++
				zap.L().Debug("merge: dropping malformed openaip record",
					zap.String("id", airport.ID), zap.Error(err))
				continue
			}
			records = append(records, rec)
		}
		decodeErr := <-errCh
		_ = f.Close()
		if decodeErr != nil {
			return nil, dropped, eris.Wrapf(decodeErr, "merge: decode %s", path)
		}
	}

	return records, dropped, nil
}

func normalizeOpenAIP(a *openaip.Airport) model.HelipadRecord {
	lat, lon := math.NaN(), math.NaN()
	if la, lo, ok := a.Coordinates(); ok {
		lat, lon = la, lo
	}

	elevation := ""
	if a.Elevation != nil {
		elevation = strconv.FormatFloat(a.Elevation.Value, 'f', -1, 64)
	}

	return model.HelipadRecord{
		SourceID:   a.ID,
		Source:     model.SourceOpenAIP,
		Name:       a.Name,
		ICAO:       a.ICAOCode,
		Lat:        lat,
		Lon:        lon,
		ElevationM: elevation,
		Operator:   a.Operator(),
	}
}

// LoadOSMHelipads reads all raw Overpass helipad files in dir and normalizes
// the elements into HelipadRecords. Elements without coordinates (ways or
// relations missing a computed center) are dropped and counted.
func LoadOSMHelipads(ctx context.Context, dir string) ([]model.HelipadRecord, int, error) {
	files, err := listJSONFiles(dir)
	if err != nil {
		return nil, 0, err
	}

	var records []model.HelipadRecord
	dropped := 0

	for _, path := range files {
		resp, err := readOverpassFile(path)
		if err != nil {
			return nil, dropped, err
		}
		if ctx.Err() != nil {
			return nil, dropped, eris.Wrap(ctx.Err(), "merge: context cancelled")
		}

		for i := range resp.Elements {
			rec := normalizeOSM(&resp.Elements[i])
			if err := rec.Validate(); err != nil {
				dropped++
				zap.L().Debug("merge: dropping malformed osm record",
					zap.String("ref", resp.Elements[i].Ref()), zap.Error(err))
				continue
			}
			records = append(records, rec)
		}
	}

	return records, dropped, nil
}

func normalizeOSM(e *overpass.Element) model.HelipadRecord {
	lat, lon := math.NaN(), math.NaN()
	if la, lo, ok := e.Coordinates(); ok {
		lat, lon = la, lo
	}

	return model.HelipadRecord{
		SourceID:    e.Ref(),
		Source:      model.SourceOSM,
		Name:        e.Tag("name"),
		ICAO:        e.Tag("icao"),
		Lat:         lat,
		Lon:         lon,
		ElevationM:  e.Tag("ele"),
		Surface:     e.Tag("surface"),
		Operator:    e.Tag("operator:type"),
		Description: e.Tag("description"),
	}
}

// LoadProximityPoints reads an Overpass point set (hospitals, offshore
// platforms) used only for annotation. Elements without coordinates are
// silently skipped.
func LoadProximityPoints(ctx context.Context, dir string) ([]model.ProximityPoint, error) {
	files, err := listJSONFiles(dir)
	if err != nil {
		return nil, err
	}

	var points []model.ProximityPoint
	for _, path := range files {
		resp, err := readOverpassFile(path)
		if err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "merge: context cancelled")
		}
		for i := range resp.Elements {
			if lat, lon, ok := resp.Elements[i].Coordinates(); ok {
				points = append(points, model.ProximityPoint{Lat: lat, Lon: lon})
			}
		}
	}
	return points, nil
}

func readOverpassFile(path string) (*overpass.Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "merge: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	resp, err := fetcher.DecodeJSONObject[overpass.Response](f)
	if err != nil {
		return nil, eris.Wrapf(err, "merge: decode %s", path)
	}
	return resp, nil
}

func listJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "merge: read dir %s", dir)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}
