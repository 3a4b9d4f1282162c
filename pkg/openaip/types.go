package openaip

// Airport type codes from the OpenAIP airport schema. Only the two heliport
// codes are relevant to this pipeline.
const (
	TypeHeliportMilitary = 4
	TypeHeliportCivil    = 7
)

// Airport is a single entry of an OpenAIP airport dump file.
type Airport struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	ICAOCode  string     `json:"icaoCode,omitempty"`
	Type      int        `json:"type"`
	Geometry  *Geometry  `json:"geometry,omitempty"`
	Elevation *Elevation `json:"elevation,omitempty"`
}

// Geometry is a GeoJSON point in [lon, lat] order.
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Elevation is a value with an OpenAIP unit code (0 = meter).
type Elevation struct {
	Value float64 `json:"value"`
	Unit  int     `json:"unit"`
}

// IsHeliport reports whether the airport is a civil or military heliport.
func (a *Airport) IsHeliport() bool {
	return a.Type == TypeHeliportCivil || a.Type == TypeHeliportMilitary
}

// Operator describes the operator kind derived from the type code.
func (a *Airport) Operator() string {
	if a.Type == TypeHeliportMilitary {
		return "Military"
	}
	return "Civil"
}

// Coordinates returns (lat, lon). ok is false when the geometry is missing
// or malformed.
func (a *Airport) Coordinates() (lat, lon float64, ok bool) {
	if a.Geometry == nil || len(a.Geometry.Coordinates) < 2 {
		return 0, 0, false
	}
	return a.Geometry.Coordinates[1], a.Geometry.Coordinates[0], true
}

// listResponse is the GCS JSON API object listing envelope.
type listResponse struct {
	Items         []listObject `json:"items"`
	NextPageToken string       `json:"nextPageToken,omitempty"`
}

type listObject struct {
	Name string `json:"name"`
}
