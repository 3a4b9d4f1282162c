package overpass

import "fmt"

// Response is the Overpass API JSON response envelope.
type Response struct {
	Version   float64   `json:"version"`
	Generator string    `json:"generator"`
	Elements  []Element `json:"elements"`
}

// Center holds the computed center of a way or relation (from `out center`).
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is a single OSM node, way, or relation.
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Coordinates returns the element's point location. Nodes carry lat/lon
// directly; ways and relations use the computed center. ok is false when
// neither is present.
func (e *Element) Coordinates() (lat, lon float64, ok bool) {
	switch e.Type {
	case "node":
		if e.Lat == nil || e.Lon == nil {
			return 0, 0, false
		}
		return *e.Lat, *e.Lon, true
	case "way", "relation":
		if e.Center == nil {
			return 0, 0, false
		}
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}

// Ref returns a stable identifier like "node/240095754".
func (e *Element) Ref() string {
	return fmt.Sprintf("%s/%d", e.Type, e.ID)
}

// Tag returns the tag value or "" when absent.
func (e *Element) Tag(key string) string {
	return e.Tags[key]
}
