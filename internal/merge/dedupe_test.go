package merge

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldhelipads/helipad-cli/internal/model"
)

func openaipRec(id, name string, lat, lon float64) model.HelipadRecord {
	return model.HelipadRecord{SourceID: id, Source: model.SourceOpenAIP, Name: name, Lat: lat, Lon: lon}
}

func osmRec(id, name string, lat, lon float64) model.HelipadRecord {
	return model.HelipadRecord{SourceID: id, Source: model.SourceOSM, Name: name, Lat: lat, Lon: lon}
}

func TestDedupeMergesNearbyPair(t *testing.T) {
	// ~1.5 m apart, well inside the 50 m radius.
	oa := openaipRec("A1", "Alpine Pad", 46.5, 8.0)
	osm := osmRec("node/1", "", 46.50001, 8.00001)

	merged, pairs, duplicates := Dedupe(
		[]model.HelipadRecord{oa}, []model.HelipadRecord{osm}, 50)

	require.Len(t, merged, 1)
	assert.Equal(t, 1, pairs)
	assert.Zero(t, duplicates)

	rec := merged[0]
	assert.Equal(t, []string{"A1", "node/1"}, rec.SourceIDs)
	assert.Equal(t, "Alpine Pad", rec.Name)
	assert.Equal(t, model.SourceOpenAIP, rec.Source)
	// Aviation-source coordinates win.
	assert.Equal(t, 46.5, rec.Lat)
	assert.Equal(t, 8.0, rec.Lon)
}

func TestDedupeKeepsDistantRecords(t *testing.T) {
	oa := openaipRec("A1", "Alpine Pad", 46.5, 8.0)
	// ~110 m north, outside the radius.
	osm := osmRec("node/1", "Other Pad", 46.501, 8.0)

	merged, pairs, duplicates := Dedupe(
		[]model.HelipadRecord{oa}, []model.HelipadRecord{osm}, 50)

	assert.Len(t, merged, 2)
	assert.Zero(t, pairs)
	assert.Zero(t, duplicates)
}

func TestDedupeClosestOSMWins(t *testing.T) {
	oa := openaipRec("A1", "Pad", 46.5, 8.0)
	far := osmRec("node/far", "", 46.5003, 8.0)       // ~33 m
	nearest := osmRec("node/close", "", 46.50001, 8.0) // ~1 m

	merged, pairs, duplicates := Dedupe(
		[]model.HelipadRecord{oa}, []model.HelipadRecord{far, nearest}, 50)

	require.Len(t, merged, 1)
	assert.Equal(t, 1, pairs)
	// The second in-radius element is the same site reported twice.
	assert.Equal(t, 1, duplicates)
	assert.Equal(t, []string{"A1", "node/close"}, merged[0].SourceIDs)
}

func TestDedupeCollapsesExactCoordinateDuplicates(t *testing.T) {
	// The same element comes back from two adjacent bbox tiles.
	a := osmRec("node/1", "Pad", 10.0, 20.0)
	b := osmRec("node/1", "Pad", 10.0, 20.0)

	merged, pairs, duplicates := Dedupe(nil, []model.HelipadRecord{a, b}, 50)

	require.Len(t, merged, 1)
	assert.Zero(t, pairs)
	assert.Equal(t, 1, duplicates)
}

func TestDedupeCollapsesExactOpenAIPDuplicates(t *testing.T) {
	// Identical coordinates across the output collapse to one record, not
	// just within the OSM set.
	a := openaipRec("A1", "Pad", 10.0, 20.0)
	b := openaipRec("A2", "Pad Again", 10.0, 20.0)

	merged, pairs, duplicates := Dedupe([]model.HelipadRecord{a, b}, nil, 50)

	require.Len(t, merged, 1)
	assert.Zero(t, pairs)
	assert.Equal(t, 1, duplicates)
	assert.Equal(t, []string{"A1"}, merged[0].SourceIDs)
}

func TestDedupeMergesAcrossAntimeridian(t *testing.T) {
	// ~22 m apart on opposite sides of the 180th meridian.
	oa := openaipRec("A1", "Pacific Pad", 0.0, 179.9999)
	osm := osmRec("node/1", "", 0.0, -179.9999)

	merged, pairs, duplicates := Dedupe(
		[]model.HelipadRecord{oa}, []model.HelipadRecord{osm}, 50)

	require.Len(t, merged, 1)
	assert.Equal(t, 1, pairs)
	assert.Zero(t, duplicates)
	assert.Equal(t, []string{"A1", "node/1"}, merged[0].SourceIDs)
}

func TestDedupeOSMFillsMissingFields(t *testing.T) {
	oa := openaipRec("A1", "Pad", 46.5, 8.0)
	osm := osmRec("node/1", "Pad Heliport Northwest", 46.50001, 8.0)
	osm.ICAO = "LSXX"
	osm.Surface = "concrete"
	osm.ElevationM = "447"

	merged, _, _ := Dedupe([]model.HelipadRecord{oa}, []model.HelipadRecord{osm}, 50)

	require.Len(t, merged, 1)
	rec := merged[0]
	// The longer OSM name is richer.
	assert.Equal(t, "Pad Heliport Northwest", rec.Name)
	assert.Equal(t, "LSXX", rec.ICAO)
	assert.Equal(t, "concrete", rec.Surface)
	assert.Equal(t, "447", rec.ElevationM)
}

func TestDedupeNoTwoOutputsWithinRadius(t *testing.T) {
	var openaipRecs, osmRecs []model.HelipadRecord
	for i := range 5 {
		openaipRecs = append(openaipRecs,
			openaipRec(fmt.Sprintf("A%d", i), "", 46.5+float64(i)*0.01, 8.0))
		osmRecs = append(osmRecs,
			osmRec(fmt.Sprintf("node/%d", i), "", 46.5+float64(i)*0.01+0.00002, 8.0))
	}

	merged, pairs, _ := Dedupe(openaipRecs, osmRecs, 50)
	assert.Len(t, merged, 5)
	assert.Equal(t, 5, pairs)
}

func TestDedupeHighLatitude(t *testing.T) {
	// Near the pole a degree of longitude is tiny; the grid neighborhood has
	// to widen or the pair is missed.
	oa := openaipRec("A1", "Arctic Pad", 82.0, 10.0)
	osm := osmRec("node/1", "", 82.0, 10.002) // ~31 m at lat 82

	merged, pairs, _ := Dedupe([]model.HelipadRecord{oa}, []model.HelipadRecord{osm}, 50)
	require.Len(t, merged, 1)
	assert.Equal(t, 1, pairs)
}

func TestRicherName(t *testing.T) {
	assert.Equal(t, "OSM Name", richerName("", "OSM Name"))
	assert.Equal(t, "Aviation", richerName("Aviation", ""))
	assert.Equal(t, "The Longer Name", richerName("Short", "The Longer Name"))
	// Ties go to the aviation source.
	assert.Equal(t, "Alpha", richerName("Alpha", "Bravo"))
}
