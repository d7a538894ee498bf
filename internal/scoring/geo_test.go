package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

func TestHaversineKMKnownDistance(t *testing.T) {
	// Lagos (Ikeja) to Abuja (FCT), roughly 530km apart.
	lagos := domain.GeoPoint{Lon: 3.3515, Lat: 6.6018}
	abuja := domain.GeoPoint{Lon: 7.4898, Lat: 9.0579}

	got := haversineKM(lagos, abuja)
	assert.True(t, got >= 510 && got <= 550, "haversineKM(lagos, abuja) = %.1f, expected roughly 510-550km", got)
}

func TestHaversineKMSamePoint(t *testing.T) {
	p := domain.GeoPoint{Lon: 7.0, Lat: 9.0}
	assert.InDelta(t, 0, haversineKM(p, p), 1e-9)
}

func TestPointInPolygonSquare(t *testing.T) {
	square := []domain.GeoPoint{
		{Lon: 0, Lat: 0}, {Lon: 0, Lat: 10}, {Lon: 10, Lat: 10}, {Lon: 10, Lat: 0},
	}

	assert.True(t, pointInPolygon(domain.GeoPoint{Lon: 5, Lat: 5}, square), "expected point (5,5) to be inside the square")
	assert.False(t, pointInPolygon(domain.GeoPoint{Lon: 20, Lat: 20}, square), "expected point (20,20) to be outside the square")
}

func TestPointInPolygonDegenerateRing(t *testing.T) {
	ring := []domain.GeoPoint{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1}}
	assert.False(t, pointInPolygon(domain.GeoPoint{Lon: 0, Lat: 0}, ring), "a ring with fewer than 3 points can never contain a point")
}

func TestNearestMiningSite(t *testing.T) {
	origin := domain.GeoPoint{Lon: 0, Lat: 0}
	sites := []domain.MiningSite{
		{Name: "far", Lon: 5, Lat: 5},
		{Name: "near", Lon: 0.01, Lat: 0.01},
	}

	site, dist, ok := nearestMiningSite(origin, sites)
	require.True(t, ok, "expected ok=true with non-empty sites")
	assert.Equal(t, "near", site.Name)
	assert.True(t, dist > 0 && dist <= 5, "unexpected distance %.2f for nearest site", dist)
}

func TestNearestMiningSiteEmpty(t *testing.T) {
	_, _, ok := nearestMiningSite(domain.GeoPoint{}, nil)
	assert.False(t, ok, "expected ok=false for an empty site list")
}

func TestClimateZoneFor(t *testing.T) {
	zones := []domain.ClimateZone{
		{
			Region: "delta-flood-plain",
			Polygon: []domain.GeoPoint{
				{Lon: 0, Lat: 0}, {Lon: 0, Lat: 10}, {Lon: 10, Lat: 10}, {Lon: 10, Lat: 0},
			},
		},
	}

	zone, ok := climateZoneFor(domain.GeoPoint{Lon: 5, Lat: 5}, zones)
	assert.True(t, ok)
	assert.Equal(t, "delta-flood-plain", zone.Region)

	_, ok = climateZoneFor(domain.GeoPoint{Lon: 50, Lat: 50}, zones)
	assert.False(t, ok, "expected no match outside every zone")
}
