// Package model defines the record types passed between pipeline stages.
package model

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Source identifies the dataset a record originated from.
type Source string

const (
	SourceOpenAIP Source = "OpenAIP"
	SourceOSM     Source = "OSM"
)

// HelipadRecord is a single landing-site point normalized from one source.
type HelipadRecord struct {
	SourceID    string  `json:"source_id"`
	Source      Source  `json:"source"`
	Name        string  `json:"name"`
	ICAO        string  `json:"icao"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	ElevationM  string  `json:"elevation_m"` // free text as reported by the source
	Surface     string  `json:"surface"`
	Operator    string  `json:"operator"`
	Description string  `json:"description"`
}

// Validate reports whether the record carries usable coordinates.
func (r *HelipadRecord) Validate() error {
	if math.IsNaN(r.Lat) || math.IsNaN(r.Lon) {
		return eris.Errorf("model: record %s/%s has missing coordinates", r.Source, r.SourceID)
	}
	if r.Lat < -90 || r.Lat > 90 {
		return eris.Errorf("model: record %s/%s latitude %f out of range", r.Source, r.SourceID, r.Lat)
	}
	if r.Lon < -180 || r.Lon > 180 {
		return eris.Errorf("model: record %s/%s longitude %f out of range", r.Source, r.SourceID, r.Lon)
	}
	return nil
}

// MergedRecord is a deduplicated landing site carrying its contributing source IDs.
type MergedRecord struct {
	HelipadRecord
	SourceIDs    []string `json:"source_ids"`
	NearHospital bool     `json:"near_hospital"`
	NearOffshore bool     `json:"near_offshore"`
}

// sourceIDSep joins contributing source IDs in the intermediate CSV.
const sourceIDSep = ";"

// MergedRow is the intermediate CSV representation of a MergedRecord.
type MergedRow struct {
	Lat          float64 `csv:"lat"`
	Lon          float64 `csv:"lon"`
	Source       string  `csv:"source"`
	SourceIDs    string  `csv:"source_ids"`
	Name         string  `csv:"name"`
	ICAO         string  `csv:"icao"`
	ElevationM   string  `csv:"elevation_m"`
	Surface      string  `csv:"surface"`
	Operator     string  `csv:"operator"`
	Description  string  `csv:"description"`
	NearHospital bool    `csv:"near_hospital"`
	NearOffshore bool    `csv:"near_offshore"`
}

// Row converts a MergedRecord to its CSV representation.
func (m *MergedRecord) Row() MergedRow {
	return MergedRow{
		Lat:          m.Lat,
		Lon:          m.Lon,
		Source:       string(m.Source),
		SourceIDs:    strings.Join(m.SourceIDs, sourceIDSep),
		Name:         m.Name,
		ICAO:         m.ICAO,
		ElevationM:   m.ElevationM,
		Surface:      m.Surface,
		Operator:     m.Operator,
		Description:  m.Description,
		NearHospital: m.NearHospital,
		NearOffshore: m.NearOffshore,
	}
}

// Record converts a CSV row back to a MergedRecord.
func (r *MergedRow) Record() MergedRecord {
	var ids []string
	if r.SourceIDs != "" {
		ids = strings.Split(r.SourceIDs, sourceIDSep)
	}
	return MergedRecord{
		HelipadRecord: HelipadRecord{
			SourceID:    firstOrEmpty(ids),
			Source:      Source(r.Source),
			Name:        r.Name,
			ICAO:        r.ICAO,
			Lat:         r.Lat,
			Lon:         r.Lon,
			ElevationM:  r.ElevationM,
			Surface:     r.Surface,
			Operator:    r.Operator,
			Description: r.Description,
		},
		SourceIDs:    ids,
		NearHospital: r.NearHospital,
		NearOffshore: r.NearOffshore,
	}
}

func firstOrEmpty(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// ProximityPoint is an auxiliary point set member (hospital, offshore platform)
// used only for annotation, never exported.
type ProximityPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
