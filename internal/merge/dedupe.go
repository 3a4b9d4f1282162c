package merge

import (
	"math"
	"sort"

	"github.com/worldhelipads/helipad-cli/internal/geodist"
	"github.com/worldhelipads/helipad-cli/internal/model"
)

// metersPerDegreeLat is the approximate length of one degree of latitude.
const metersPerDegreeLat = 111320

// index is a coarse lat/lon grid hash over points. Cells are sized to the
// search radius so a radius lookup only has to confirm candidates from the
// cell neighborhood with an exact great-circle distance.
type index struct {
	cellDeg  float64
	lonCells int
	cells    map[[2]int][]int
	lats     []float64
	lons     []float64
}

func newIndex(radiusM float64) *index {
	cellDeg := radiusM / metersPerDegreeLat
	return &index{
		cellDeg:  cellDeg,
		lonCells: int(math.Ceil(360 / cellDeg)),
		cells:    make(map[[2]int][]int),
	}
}

func (ix *index) add(lat, lon float64) {
	id := len(ix.lats)
	ix.lats = append(ix.lats, lat)
	ix.lons = append(ix.lons, lon)
	key := ix.cellKey(lat, lon)
	ix.cells[key] = append(ix.cells[key], id)
}

func (ix *index) cellKey(lat, lon float64) [2]int {
	return [2]int{
		int(math.Floor(lat / ix.cellDeg)),
		ix.lonCell(lon),
	}
}

// lonCell maps a longitude onto the closed ring of cells around the globe,
// so the cells on either side of the antimeridian are neighbors.
func (ix *index) lonCell(lon float64) int {
	return ix.wrapLon(int(math.Floor((lon + 180) / 360 * float64(ix.lonCells))))
}

func (ix *index) wrapLon(cell int) int {
	cell %= ix.lonCells
	if cell < 0 {
		cell += ix.lonCells
	}
	return cell
}

// near returns candidate point ids from the cell neighborhood of (lat, lon).
// Longitude degrees shrink toward the poles, so the longitude span widens
// with latitude to keep the neighborhood radius-complete.
func (ix *index) near(lat, lon float64) []int {
	center := ix.cellKey(lat, lon)

	lonSpan := 1
	if cosLat := math.Cos(lat * math.Pi / 180); cosLat > 0.01 {
		lonSpan = int(math.Ceil(1 / cosLat))
	} else {
		lonSpan = ix.lonCells / 2
	}
	if lonSpan > ix.lonCells/2 {
		lonSpan = ix.lonCells / 2
	}

	var out []int
	visited := make(map[[2]int]bool)
	for dLat := -1; dLat <= 1; dLat++ {
		for dLon := -lonSpan; dLon <= lonSpan; dLon++ {
			key := [2]int{center[0] + dLat, ix.wrapLon(center[1] + dLon)}
			if visited[key] {
				continue
			}
			visited[key] = true
			out = append(out, ix.cells[key]...)
		}
	}
	return out
}

// withinRadius returns the ids of indexed points within radiusM of (lat, lon),
// closest first.
func (ix *index) withinRadius(lat, lon, radiusM float64) []int {
	type hit struct {
		id   int
		dist float64
	}
	var hits []hit
	for _, id := range ix.near(lat, lon) {
		d := geodist.Haversine(lat, lon, ix.lats[id], ix.lons[id])
		if d <= radiusM {
			hits = append(hits, hit{id: id, dist: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.id
	}
	return out
}

// Dedupe merges OpenAIP and OSM helipad records that describe the same
// physical site. For each OpenAIP record, the closest OSM record within
// radiusM contributes its source ID and any fields the OpenAIP record lacks;
// further OSM records inside the radius are duplicates of the same site and
// are discarded. OSM records matching nothing pass through unmerged.
//
// The returned duplicate count covers discarded extra OSM matches and exact
// coordinate duplicates: collapsed within the OSM set up front, and across the
// whole output on emit, so no two outputs ever share identical coordinates.
func Dedupe(openaipRecs, osmRecs []model.HelipadRecord, radiusM float64) (merged []model.MergedRecord, pairs, duplicates int) {
	// Collapse exact coordinate duplicates inside the OSM set first. The bbox
	// grid can return the same element on tile borders.
	seen := make(map[[2]float64]bool, len(osmRecs))
	osm := make([]model.HelipadRecord, 0, len(osmRecs))
	for _, rec := range osmRecs {
		key := [2]float64{rec.Lat, rec.Lon}
		if seen[key] {
			duplicates++
			continue
		}
		seen[key] = true
		osm = append(osm, rec)
	}

	ix := newIndex(radiusM)
	for _, rec := range osm {
		ix.add(rec.Lat, rec.Lon)
	}

	consumed := make([]bool, len(osm))
	merged = make([]model.MergedRecord, 0, len(openaipRecs)+len(osm))
	emitted := make(map[[2]float64]bool, len(openaipRecs)+len(osm))
	emit := func(rec model.MergedRecord) {
		key := [2]float64{rec.Lat, rec.Lon}
		if emitted[key] {
			duplicates++
			return
		}
		emitted[key] = true
		merged = append(merged, rec)
	}

	for i := range openaipRecs {
		oa := &openaipRecs[i]
		out := model.MergedRecord{
			HelipadRecord: *oa,
			SourceIDs:     []string{oa.SourceID},
		}

		matched := false
		for _, id := range ix.withinRadius(oa.Lat, oa.Lon, radiusM) {
			if consumed[id] {
				continue
			}
			consumed[id] = true
			if !matched {
				matched = true
				pairs++
				fillFromOSM(&out, &osm[id])
			} else {
				// Same site reported by several OSM elements.
				duplicates++
			}
		}
		emit(out)
	}

	for id := range osm {
		if consumed[id] {
			continue
		}
		emit(model.MergedRecord{
			HelipadRecord: osm[id],
			SourceIDs:     []string{osm[id].SourceID},
		})
	}

	return merged, pairs, duplicates
}

// fillFromOSM folds a matched OSM record into an OpenAIP-based merged record.
// OpenAIP coordinates are kept; the richer name wins; OSM fills field gaps.
func fillFromOSM(out *model.MergedRecord, osm *model.HelipadRecord) {
	out.SourceIDs = append(out.SourceIDs, osm.SourceID)
	out.Name = richerName(out.Name, osm.Name)
	if out.ICAO == "" {
		out.ICAO = osm.ICAO
	}
	if out.ElevationM == "" {
		out.ElevationM = osm.ElevationM
	}
	if out.Surface == "" {
		out.Surface = osm.Surface
	}
	if out.Description == "" {
		out.Description = osm.Description
	}
}

// richerName picks the more informative of two names: non-empty beats empty,
// longer beats shorter, and the aviation-source name wins ties.
func richerName(aviation, other string) string {
	if aviation == "" {
		return other
	}
	if len(other) > len(aviation) {
		return other
	}
	return aviation
}
