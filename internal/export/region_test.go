package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignRegion(t *testing.T) {
	tests := []struct {
		lon  float64
		want Region
	}{
		{-180, RegionAmericas},
		{-75.0, RegionAmericas},
		{-20, RegionAmericas},
		{-19.999, RegionEuropeAfrica},
		{0, RegionEuropeAfrica},
		{60, RegionEuropeAfrica},
		{60.001, RegionRestOfWorld},
		{139.7, RegionRestOfWorld},
		{180, RegionRestOfWorld},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AssignRegion(tt.lon), "lon %g", tt.lon)
	}
}

func TestEveryLongitudeHasARegion(t *testing.T) {
	for lon := -180.0; lon <= 180.0; lon += 0.5 {
		region := AssignRegion(lon)
		assert.Contains(t, Regions, region, "lon %g", lon)
	}
}

func TestRegionString(t *testing.T) {
	assert.Equal(t, "Region 1", RegionAmericas.String())
	assert.Equal(t, "Region 2", RegionEuropeAfrica.String())
	assert.Equal(t, "Region 3", RegionRestOfWorld.String())
}

func TestRegionFileName(t *testing.T) {
	assert.Equal(t, "export_lnm_region_1.csv", RegionAmericas.FileName())
	assert.Equal(t, "export_lnm_region_3.csv", RegionRestOfWorld.FileName())
}
