package scoring

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

const earthRadiusKM = 6371.0

// haversineKM computes the great-circle distance used for mining proximity.
func haversineKM(a, b domain.GeoPoint) float64 {
	lat1, lon1 := degToRad(a.Lat), degToRad(a.Lon)
	lat2, lon2 := degToRad(b.Lat), degToRad(b.Lon)

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKM * c
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// pointInPolygon performs the climate-zone lookup via a linear scan over
// the (small) reference table; nothing here is hot enough to warrant an
// R-tree.
func pointInPolygon(point domain.GeoPoint, ring []domain.GeoPoint) bool {
	if len(ring) < 3 {
		return false
	}
	orbRing := make(orb.Ring, len(ring))
	for i, p := range ring {
		orbRing[i] = orb.Point{p.Lon, p.Lat}
	}
	poly := orb.Polygon{orbRing}
	return planar.PolygonContains(poly, orb.Point{point.Lon, point.Lat})
}

// nearestMiningSite returns the closest mining site to point and its
// distance in km, or ok=false if sites is empty.
func nearestMiningSite(point domain.GeoPoint, sites []domain.MiningSite) (site domain.MiningSite, distanceKM float64, ok bool) {
	if len(sites) == 0 {
		return domain.MiningSite{}, 0, false
	}
	best := sites[0]
	bestDist := haversineKM(point, domain.GeoPoint{Lon: best.Lon, Lat: best.Lat})
	for _, s := range sites[1:] {
		d := haversineKM(point, domain.GeoPoint{Lon: s.Lon, Lat: s.Lat})
		if d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, bestDist, true
}

// climateZoneFor locates the climate zone containing point via
// point-in-polygon, returning ok=false if none matches.
func climateZoneFor(point domain.GeoPoint, zones []domain.ClimateZone) (domain.ClimateZone, bool) {
	for _, z := range zones {
		if pointInPolygon(point, z.Polygon) {
			return z, true
		}
	}
	return domain.ClimateZone{}, false
}
