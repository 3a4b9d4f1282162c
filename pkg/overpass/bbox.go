package overpass

import (
	"fmt"
	"strings"
)

// BBox is a latitude/longitude bounding box in decimal degrees.
type BBox struct {
	LatMin float64
	LonMin float64
	LatMax float64
	LonMax float64
}

// String renders the bbox in Overpass filter order: south, west, north, east.
func (b BBox) String() string {
	return fmt.Sprintf("%g, %g, %g, %g", b.LatMin, b.LonMin, b.LatMax, b.LonMax)
}

// FileName returns a filesystem-safe name for per-bbox raw files.
func (b BBox) FileName() string {
	return fmt.Sprintf("bbox_%g_%g_%g_%g.json", b.LatMin, b.LonMin, b.LatMax, b.LonMax)
}

// WorldGrid divides the globe into latDivisions x lonDivisions bounding boxes.
// Querying the whole planet in one request would time out on the public
// Overpass instance, so retrieval walks this grid.
func WorldGrid(latDivisions, lonDivisions int) []BBox {
	boxes := make([]BBox, 0, latDivisions*lonDivisions)
	latStep := 180.0 / float64(latDivisions)
	lonStep := 360.0 / float64(lonDivisions)

	for latDiv := 0; latDiv < latDivisions; latDiv++ {
		for lonDiv := 0; lonDiv < lonDivisions; lonDiv++ {
			boxes = append(boxes, BBox{
				LatMin: -90 + float64(latDiv)*latStep,
				LatMax: -90 + float64(latDiv+1)*latStep,
				LonMin: -180 + float64(lonDiv)*lonStep,
				LonMax: -180 + float64(lonDiv+1)*lonStep,
			})
		}
	}
	return boxes
}

// bboxToken is the placeholder replaced with the bbox in query templates.
const bboxToken = "$bbox$"

// ExpandQuery substitutes the bbox into a query template.
func ExpandQuery(template string, bbox BBox) string {
	return strings.ReplaceAll(template, bboxToken, bbox.String())
}
