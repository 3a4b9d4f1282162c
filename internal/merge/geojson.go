package merge

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/worldhelipads/helipad-cli/internal/model"
)

// writeGeoJSON writes the merged dataset as a GeoJSON FeatureCollection for
// map preview tooling. The CSV stays the authoritative intermediate format.
func writeGeoJSON(path string, records []model.MergedRecord) error {
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(records)),
	}

	for i := range records {
		rec := &records[i]
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       rec.SourceID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{rec.Lon, rec.Lat}),
			Properties: map[string]any{
				"name":          rec.Name,
				"icao":          rec.ICAO,
				"source":        string(rec.Source),
				"source_ids":    rec.SourceIDs,
				"near_hospital": rec.NearHospital,
				"near_offshore": rec.NearOffshore,
			},
		})
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return eris.Wrap(err, "merge: marshal geojson")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "merge: write geojson")
	}
	return nil
}
