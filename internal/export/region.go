package export

import "fmt"

// Region is one of the three longitude bands the export is split into.
type Region int

const (
	// RegionAmericas covers the Americas and the Atlantic, lon in [-180, -20].
	RegionAmericas Region = 1
	// RegionEuropeAfrica covers Europe and Africa, lon in (-20, 60].
	RegionEuropeAfrica Region = 2
	// RegionRestOfWorld covers everything east of 60.
	RegionRestOfWorld Region = 3
)

// Regions lists all export regions in order.
var Regions = []Region{RegionAmericas, RegionEuropeAfrica, RegionRestOfWorld}

// westernBoundary and easternBoundary split the globe into the three bands.
const (
	westernBoundary = -20.0
	easternBoundary = 60.0
)

// AssignRegion maps a longitude to its export region. Total over valid
// longitudes: every value in [-180, 180] lands in exactly one band.
func AssignRegion(lon float64) Region {
	switch {
	case lon <= westernBoundary:
		return RegionAmericas
	case lon <= easternBoundary:
		return RegionEuropeAfrica
	default:
		return RegionRestOfWorld
	}
}

// String renders the region label used in the exported Region column.
func (r Region) String() string {
	return fmt.Sprintf("Region %d", int(r))
}

// FileName returns the export file name for the region.
func (r Region) FileName() string {
	return fmt.Sprintf("export_lnm_region_%d.csv", int(r))
}
