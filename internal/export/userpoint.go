package export

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/worldhelipads/helipad-cli/internal/model"
)

// Userpoint is one row of the LittleNavMap userpoint import CSV.
type Userpoint struct {
	Type                string  `csv:"Type"`
	Name                string  `csv:"Name"`
	Ident               string  `csv:"Ident"`
	Latitude            float64 `csv:"Latitude"`
	Longitude           float64 `csv:"Longitude"`
	Elevation           string  `csv:"Elevation"`
	MagneticDeclination string  `csv:"Magnetic Declination"`
	Tags                string  `csv:"Tags"`
	Description         string  `csv:"Description"`
	Region              string  `csv:"Region"`
	VisibleFrom         string  `csv:"Visible From"`
}

const (
	userpointType = "Helipad"
	baseTag       = "WorldHelipads"
	feetPerMeter  = 3.28084
)

var titleCaser = cases.Title(language.English)

// FromMerged converts a merged record into its userpoint row, including the
// region assignment derived from longitude.
func FromMerged(rec *model.MergedRecord) Userpoint {
	return Userpoint{
		Type:        userpointType,
		Name:        rec.Name,
		Ident:       rec.ICAO,
		Latitude:    rec.Lat,
		Longitude:   rec.Lon,
		Elevation:   elevationFeet(rec.ElevationM),
		Tags:        buildTags(rec),
		Description: buildDescription(rec),
		Region:      AssignRegion(rec.Lon).String(),
	}
}

func buildTags(rec *model.MergedRecord) string {
	tags := []string{baseTag}
	if rec.NearHospital {
		tags = append(tags, "Hospital")
	}
	if rec.NearOffshore {
		tags = append(tags, "Offshore")
	}
	return strings.Join(tags, " ")
}

// buildDescription renders the leftover metadata as capitalized key/value
// lines, ending with the originating source.
func buildDescription(rec *model.MergedRecord) string {
	var b strings.Builder

	pairs := []struct{ key, value string }{
		{"surface", rec.Surface},
		{"operator", rec.Operator},
		{"description", rec.Description},
	}

	if rec.ElevationM != "" {
		b.WriteString("Elevation: " + rec.ElevationM + "m MSL\n")
	}
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		b.WriteString(titleCaser.String(p.key) + ": " + p.value + "\n")
	}
	b.WriteString("Source: " + string(rec.Source))

	return b.String()
}

// elevationFeet converts a free-form metric elevation to feet. The sources
// report strings like "447", "447 m", or "1,447"; anything unparseable
// exports as an empty elevation rather than failing the record.
func elevationFeet(raw string) string {
	if raw == "" {
		return ""
	}

	var digits strings.Builder
	for _, ch := range raw {
		if (ch >= '0' && ch <= '9') || ch == '.' || ch == '-' {
			digits.WriteRune(ch)
		}
	}

	meters, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(meters*feetPerMeter, 'f', -1, 64)
}
