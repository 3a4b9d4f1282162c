package merge

import "github.com/worldhelipads/helipad-cli/internal/model"

// Annotate flags merged helipads located near a hospital or an offshore
// platform. The flags end up as extra userpoint tags in the export.
func Annotate(records []model.MergedRecord, hospitals, offshore []model.ProximityPoint, hospitalRadiusM, offshoreRadiusM float64) (hospitalTagged, offshoreTagged int) {
	hospitalTagged = annotateSet(records, hospitals, hospitalRadiusM, func(r *model.MergedRecord) { r.NearHospital = true })
	offshoreTagged = annotateSet(records, offshore, offshoreRadiusM, func(r *model.MergedRecord) { r.NearOffshore = true })
	return hospitalTagged, offshoreTagged
}

func annotateSet(records []model.MergedRecord, points []model.ProximityPoint, radiusM float64, mark func(*model.MergedRecord)) int {
	if len(points) == 0 || radiusM <= 0 {
		return 0
	}

	ix := newIndex(radiusM)
	for _, p := range points {
		ix.add(p.Lat, p.Lon)
	}

	tagged := 0
	for i := range records {
		if len(ix.withinRadius(records[i].Lat, records[i].Lon, radiusM)) > 0 {
			mark(&records[i])
			tagged++
		}
	}
	return tagged
}
