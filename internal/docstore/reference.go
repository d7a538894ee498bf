package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/naija-watch/conflict-monitor/internal/apperrors"
	"github.com/naija-watch/conflict-monitor/internal/domain"
)

// ReferenceRepo manages the read-only-after-load reference tables:
// economic, strategic, climate, mining, border. Economic lookups prefer
// an exact (state,lga) match and fall
// back to the state-level record (lga="") when no LGA row exists.
type ReferenceRepo struct {
	db *DB
}

// NewReferenceRepo constructs a ReferenceRepo over db.
func NewReferenceRepo(db *DB) *ReferenceRepo {
	return &ReferenceRepo{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx, letting the upsert
// helpers run standalone or as part of a larger transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// UpsertEconomic replaces the (state,lga) economic record.
func (r *ReferenceRepo) UpsertEconomic(ctx context.Context, e domain.EconomicRecord) error {
	return upsertEconomic(ctx, r.db.Conn(), e)
}

func upsertEconomic(ctx context.Context, ex execer, e domain.EconomicRecord) error {
	var lon, lat interface{}
	if e.Geo != nil {
		lon, lat = e.Geo.Lon, e.Geo.Lat
	}
	var unemployment interface{}
	if e.UnemploymentRate != nil {
		unemployment = *e.UnemploymentRate
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO economic_records (state, lga, inflation_rate, fuel_price, unemployment_rate, updated_at, source, geo_lon, geo_lat)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(state, lga) DO UPDATE SET
		   inflation_rate=excluded.inflation_rate, fuel_price=excluded.fuel_price,
		   unemployment_rate=excluded.unemployment_rate, updated_at=excluded.updated_at,
		   source=excluded.source, geo_lon=excluded.geo_lon, geo_lat=excluded.geo_lat`,
		e.State, e.LGA, e.InflationRate, e.FuelPrice, unemployment, e.UpdatedAt.Format(time.RFC3339),
		nullableString(e.Source), lon, lat,
	)
	if err != nil {
		return apperrors.TransientExternal(err, "failed to upsert economic record for %s/%s", e.State, e.LGA)
	}
	return nil
}

// Economic looks up the economic record for (state,lga), falling back to
// the state-level record if no LGA-specific row exists.
func (r *ReferenceRepo) Economic(ctx context.Context, state, lga string) (*domain.EconomicRecord, error) {
	rec, err := r.economicExact(ctx, state, lga)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}
	if lga == "" {
		return nil, nil
	}
	return r.economicExact(ctx, state, "")
}

func (r *ReferenceRepo) economicExact(ctx context.Context, state, lga string) (*domain.EconomicRecord, error) {
	row := r.db.Conn().QueryRowContext(ctx,
		`SELECT state, lga, inflation_rate, fuel_price, unemployment_rate, updated_at, source, geo_lon, geo_lat
		 FROM economic_records WHERE state = ? AND lga = ?`, state, lga)

	var e domain.EconomicRecord
	var updatedAt string
	var unemployment, lon, lat sql.NullFloat64
	var source sql.NullString

	if err := row.Scan(&e.State, &e.LGA, &e.InflationRate, &e.FuelPrice, &unemployment, &updatedAt, &source, &lon, &lat); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.TransientExternal(err, "failed to read economic record for %s/%s", state, lga)
	}

	parsed, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse economic updated_at %q: %w", updatedAt, err)
	}
	e.UpdatedAt = parsed
	if unemployment.Valid {
		v := unemployment.Float64
		e.UnemploymentRate = &v
	}
	if source.Valid {
		e.Source = source.String
	}
	if lon.Valid && lat.Valid {
		e.Geo = &domain.GeoPoint{Lon: lon.Float64, Lat: lat.Float64}
	}
	return &e, nil
}

// UpsertStrategic replaces the state-level strategic indicators row.
func (r *ReferenceRepo) UpsertStrategic(ctx context.Context, s domain.StrategicIndicators) error {
	return upsertStrategic(ctx, r.db.Conn(), s)
}

func upsertStrategic(ctx context.Context, ex execer, s domain.StrategicIndicators) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO strategic_indicators (state, poverty_rate, inflation_rate, unemployment, mining_density, climate_vulnerability, migration_pressure)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(state) DO UPDATE SET
		   poverty_rate=excluded.poverty_rate, inflation_rate=excluded.inflation_rate, unemployment=excluded.unemployment,
		   mining_density=excluded.mining_density, climate_vulnerability=excluded.climate_vulnerability,
		   migration_pressure=excluded.migration_pressure`,
		s.State, s.PovertyRate, s.InflationRate, s.Unemployment, s.MiningDensity, s.ClimateVulnerability, s.MigrationPressure,
	)
	if err != nil {
		return apperrors.TransientExternal(err, "failed to upsert strategic indicators for %s", s.State)
	}
	return nil
}

// ReplaceEconomicAndStrategic reloads the economic and strategic reference
// tables as a single transaction, so a failure partway through a reload
// (e.g. a malformed row late in the source file) leaves the previous
// reference data intact instead of a half-applied mix of old and new rows.
func (r *ReferenceRepo) ReplaceEconomicAndStrategic(ctx context.Context, economic []domain.EconomicRecord, strategic []domain.StrategicIndicators) error {
	return WithTransaction(r.db.Conn(), func(tx *sql.Tx) error {
		for _, e := range economic {
			if e.UpdatedAt.IsZero() {
				e.UpdatedAt = time.Now()
			}
			if err := upsertEconomic(ctx, tx, e); err != nil {
				return err
			}
		}
		for _, s := range strategic {
			if err := upsertStrategic(ctx, tx, s); err != nil {
				return err
			}
		}
		return nil
	})
}

// Strategic looks up state-level strategic indicators.
func (r *ReferenceRepo) Strategic(ctx context.Context, state string) (*domain.StrategicIndicators, error) {
	row := r.db.Conn().QueryRowContext(ctx,
		`SELECT state, poverty_rate, inflation_rate, unemployment, mining_density, climate_vulnerability, migration_pressure
		 FROM strategic_indicators WHERE state = ?`, state)
	var s domain.StrategicIndicators
	if err := row.Scan(&s.State, &s.PovertyRate, &s.InflationRate, &s.Unemployment, &s.MiningDensity, &s.ClimateVulnerability, &s.MigrationPressure); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.TransientExternal(err, "failed to read strategic indicators for %s", state)
	}
	return &s, nil
}

// UpsertClimateZone replaces a reference climate polygon.
func (r *ReferenceRepo) UpsertClimateZone(ctx context.Context, z domain.ClimateZone) error {
	polygonJSON, err := json.Marshal(z.Polygon)
	if err != nil {
		return fmt.Errorf("failed to marshal climate zone polygon for %s: %w", z.Region, err)
	}
	_, err = r.db.Conn().ExecContext(ctx,
		`INSERT INTO climate_zones (region, indicator, recession_index, flood_inundation_index, impact_zone, conflict_correlation, polygon_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(region) DO UPDATE SET
		   indicator=excluded.indicator, recession_index=excluded.recession_index,
		   flood_inundation_index=excluded.flood_inundation_index, impact_zone=excluded.impact_zone,
		   conflict_correlation=excluded.conflict_correlation, polygon_json=excluded.polygon_json`,
		z.Region, z.Indicator, z.RecessionIndex, z.FloodInundationIndex, z.ImpactZone, z.ConflictCorrelation, string(polygonJSON),
	)
	if err != nil {
		return apperrors.TransientExternal(err, "failed to upsert climate zone %s", z.Region)
	}
	return nil
}

// ClimateZones returns every reference climate zone for in-memory
// point-in-polygon lookups; the table is small enough for a linear scan.
func (r *ReferenceRepo) ClimateZones(ctx context.Context) ([]domain.ClimateZone, error) {
	rows, err := r.db.Conn().QueryContext(ctx,
		`SELECT region, indicator, recession_index, flood_inundation_index, impact_zone, conflict_correlation, polygon_json FROM climate_zones`)
	if err != nil {
		return nil, apperrors.TransientExternal(err, "failed to list climate zones")
	}
	defer rows.Close()

	var out []domain.ClimateZone
	for rows.Next() {
		var z domain.ClimateZone
		var polygonJSON string
		if err := rows.Scan(&z.Region, &z.Indicator, &z.RecessionIndex, &z.FloodInundationIndex, &z.ImpactZone, &z.ConflictCorrelation, &polygonJSON); err != nil {
			return nil, apperrors.TransientExternal(err, "failed to scan climate zone row")
		}
		if err := json.Unmarshal([]byte(polygonJSON), &z.Polygon); err != nil {
			return nil, fmt.Errorf("failed to unmarshal climate zone polygon: %w", err)
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

// UpsertMiningSite replaces a reference mining site.
func (r *ReferenceRepo) UpsertMiningSite(ctx context.Context, m domain.MiningSite) error {
	_, err := r.db.Conn().ExecContext(ctx,
		`INSERT INTO mining_sites (name, state, mineral_type, informal_taxation_rate, activity_level, security_incidents_30d, lon, lat)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   state=excluded.state, mineral_type=excluded.mineral_type, informal_taxation_rate=excluded.informal_taxation_rate,
		   activity_level=excluded.activity_level, security_incidents_30d=excluded.security_incidents_30d,
		   lon=excluded.lon, lat=excluded.lat`,
		m.Name, m.State, m.MineralType, m.InformalTaxationRate, m.ActivityLevel, m.SecurityIncidents30d, m.Lon, m.Lat,
	)
	if err != nil {
		return apperrors.TransientExternal(err, "failed to upsert mining site %s", m.Name)
	}
	return nil
}

// MiningSites returns every reference mining site for haversine-distance
// scans.
func (r *ReferenceRepo) MiningSites(ctx context.Context) ([]domain.MiningSite, error) {
	rows, err := r.db.Conn().QueryContext(ctx,
		`SELECT name, state, mineral_type, informal_taxation_rate, activity_level, security_incidents_30d, lon, lat FROM mining_sites`)
	if err != nil {
		return nil, apperrors.TransientExternal(err, "failed to list mining sites")
	}
	defer rows.Close()

	var out []domain.MiningSite
	for rows.Next() {
		var m domain.MiningSite
		if err := rows.Scan(&m.Name, &m.State, &m.MineralType, &m.InformalTaxationRate, &m.ActivityLevel, &m.SecurityIncidents30d, &m.Lon, &m.Lat); err != nil {
			return nil, apperrors.TransientExternal(err, "failed to scan mining site row")
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpsertBorderZone replaces a reference border-zone row.
func (r *ReferenceRepo) UpsertBorderZone(ctx context.Context, b domain.BorderZone) error {
	lakurawa, ied := 0, 0
	if b.LakurawaPresenceConfirmed {
		lakurawa = 1
	}
	if b.SophisticatedIEDUsage {
		ied = 1
	}
	_, err := r.db.Conn().ExecContext(ctx,
		`INSERT INTO border_zones (state, border_permeability_score, border_activity, group_affiliation, lakurawa_presence_confirmed, sophisticated_ied_usage)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(state) DO UPDATE SET
		   border_permeability_score=excluded.border_permeability_score, border_activity=excluded.border_activity,
		   group_affiliation=excluded.group_affiliation, lakurawa_presence_confirmed=excluded.lakurawa_presence_confirmed,
		   sophisticated_ied_usage=excluded.sophisticated_ied_usage`,
		b.State, b.BorderPermeabilityScore, b.BorderActivity, b.GroupAffiliation, lakurawa, ied,
	)
	if err != nil {
		return apperrors.TransientExternal(err, "failed to upsert border zone %s", b.State)
	}
	return nil
}

// BorderZone looks up the border-zone reference row for a state.
func (r *ReferenceRepo) BorderZone(ctx context.Context, state string) (*domain.BorderZone, error) {
	row := r.db.Conn().QueryRowContext(ctx,
		`SELECT state, border_permeability_score, border_activity, group_affiliation, lakurawa_presence_confirmed, sophisticated_ied_usage
		 FROM border_zones WHERE state = ?`, state)
	var b domain.BorderZone
	var lakurawa, ied int
	if err := row.Scan(&b.State, &b.BorderPermeabilityScore, &b.BorderActivity, &b.GroupAffiliation, &lakurawa, &ied); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.TransientExternal(err, "failed to read border zone for %s", state)
	}
	b.LakurawaPresenceConfirmed = lakurawa != 0
	b.SophisticatedIEDUsage = ied != 0
	return &b, nil
}
