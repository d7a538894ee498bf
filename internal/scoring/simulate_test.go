package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

func TestSimulateRequestValidateAcceptsBoundaries(t *testing.T) {
	req := SimulateRequest{FuelPriceIndex: 0, InflationRate: 100, ChatterIntensity: 50}
	assert.NoError(t, req.Validate(), "expected boundary values 0 and 100 to be valid")
}

func TestSimulateRequestValidateRejectsOutOfRange(t *testing.T) {
	cases := []SimulateRequest{
		{FuelPriceIndex: -1, InflationRate: 10, ChatterIntensity: 10},
		{FuelPriceIndex: 10, InflationRate: 101, ChatterIntensity: 10},
		{FuelPriceIndex: 10, InflationRate: 10, ChatterIntensity: -5},
	}
	for _, req := range cases {
		assert.Error(t, req.Validate(), "expected %+v to fail validation", req)
	}
}

func TestFeatureForMissingGeoFallsBackToNullIsland(t *testing.T) {
	signal := Compute(ScoringInput{Event: baseEvent()}, "sig-feature", time.Now())
	f := featureFor(signal)

	assert.Equal(t, false, f.Properties["has_geo"], "expected has_geo=false when the signal carries no geo point")
	require.NotNil(t, f.Geometry, "expected a concrete geometry even with no geo point")
}

func TestFeatureForWithGeoMarksHasGeoTrue(t *testing.T) {
	geo := domain.GeoPoint{Lon: 7.0, Lat: 9.0}
	signal := Compute(ScoringInput{Event: baseEvent(), Geo: &geo}, "sig-feature-2", time.Now())

	f := featureFor(signal)
	assert.Equal(t, true, f.Properties["has_geo"], "expected has_geo=true when the signal carries a geo point")
}
