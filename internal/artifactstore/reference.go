package artifactstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

// LoadClimateZones parses a FeatureCollection of climate-zone polygons
// (region, indicator, recession_index, impact_zone, conflict_correlation)
// plus flood_inundation_index, which the scoring model reads directly.
func LoadClimateZones(path string) ([]domain.ClimateZone, error) {
	fc, err := readFeatureCollection(path)
	if err != nil {
		return nil, err
	}

	zones := make([]domain.ClimateZone, 0, len(fc.Features))
	for _, f := range fc.Features {
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok {
			return nil, fmt.Errorf("climate zone feature is not a polygon")
		}
		ring := poly[0]
		points := make([]domain.GeoPoint, len(ring))
		for i, p := range ring {
			points[i] = domain.GeoPoint{Lon: p[0], Lat: p[1]}
		}

		zones = append(zones, domain.ClimateZone{
			Region:               f.Properties.MustString("region", ""),
			Indicator:            f.Properties.MustString("indicator", ""),
			RecessionIndex:       f.Properties.MustFloat64("recession_index", 0),
			FloodInundationIndex: f.Properties.MustFloat64("flood_inundation_index", 0),
			ImpactZone:           f.Properties.MustString("impact_zone", ""),
			ConflictCorrelation:  f.Properties.MustFloat64("conflict_correlation", 0),
			Polygon:              points,
		})
	}
	return zones, nil
}

// LoadMiningSites parses a FeatureCollection of mining-site points.
func LoadMiningSites(path string) ([]domain.MiningSite, error) {
	fc, err := readFeatureCollection(path)
	if err != nil {
		return nil, err
	}

	sites := make([]domain.MiningSite, 0, len(fc.Features))
	for _, f := range fc.Features {
		point, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("mining site feature is not a point")
		}
		sites = append(sites, domain.MiningSite{
			State:                f.Properties.MustString("state", ""),
			Name:                 f.Properties.MustString("name", f.Properties.MustString("site_name", "")),
			MineralType:          f.Properties.MustString("mineral_type", ""),
			InformalTaxationRate: f.Properties.MustFloat64("informal_taxation_rate", 0),
			ActivityLevel:        f.Properties.MustString("activity_level", ""),
			SecurityIncidents30d: int(f.Properties.MustFloat64("security_incidents_last_30_days", 0)),
			Lon:                  point[0],
			Lat:                  point[1],
		})
	}
	return sites, nil
}

// LoadBorderZones parses a FeatureCollection of Sahelian border-zone
// reference records, keyed by state.
func LoadBorderZones(path string) ([]domain.BorderZone, error) {
	fc, err := readFeatureCollection(path)
	if err != nil {
		return nil, err
	}

	zones := make([]domain.BorderZone, 0, len(fc.Features))
	for _, f := range fc.Features {
		zones = append(zones, domain.BorderZone{
			State:                     f.Properties.MustString("state", ""),
			BorderPermeabilityScore:   f.Properties.MustFloat64("border_permeability_score", 0),
			BorderActivity:            f.Properties.MustString("border_activity", ""),
			GroupAffiliation:          f.Properties.MustString("group_affiliation", ""),
			LakurawaPresenceConfirmed: f.Properties.MustBool("lakurawa_presence_confirmed", false),
			SophisticatedIEDUsage:     f.Properties.MustBool("sophisticated_ied_usage", false),
		})
	}
	return zones, nil
}

func readFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference geojson %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reference geojson %s: %w", path, err)
	}
	return fc, nil
}

// LoadStrategicIndicators parses the strategic-indicators CSV: columns
// state, poverty_rate, inflation_rate, unemployment, mining_density,
// climate_vulnerability, migration_pressure, all 0..1 except state.
//
// No third-party CSV library appears anywhere in the retrieval pack with
// a better fit than the stdlib reader for this fixed 7-column table; see
// DESIGN.md.
func LoadStrategicIndicators(path string) ([]domain.StrategicIndicators, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open strategic indicators csv %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read strategic indicators csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	out := make([]domain.StrategicIndicators, 0, len(records)-1)
	for _, row := range records[1:] {
		s := domain.StrategicIndicators{
			State:                row[col["state"]],
			PovertyRate:          parseFloatColumn(row, col, "poverty_rate"),
			InflationRate:        parseFloatColumn(row, col, "inflation_rate"),
			Unemployment:         parseFloatColumn(row, col, "unemployment"),
			MiningDensity:        parseFloatColumn(row, col, "mining_density"),
			ClimateVulnerability: parseFloatColumn(row, col, "climate_vulnerability"),
			MigrationPressure:    parseFloatColumn(row, col, "migration_pressure"),
		}
		out = append(out, s)
	}
	return out, nil
}

func parseFloatColumn(row []string, col map[string]int, name string) float64 {
	idx, ok := col[name]
	if !ok || idx >= len(row) {
		return 0
	}
	v, err := strconv.ParseFloat(row[idx], 64)
	if err != nil {
		return 0
	}
	return v
}
