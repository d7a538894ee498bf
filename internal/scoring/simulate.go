package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

// SimulateRequest is the body of POST /api/v1/simulate: three
// what-if levers, each constrained to 0..100.
type SimulateRequest struct {
	FuelPriceIndex   float64 `json:"fuel_price_index" validate:"gte=0,lte=100"`
	InflationRate    float64 `json:"inflation_rate" validate:"gte=0,lte=100"`
	ChatterIntensity float64 `json:"chatter_intensity" validate:"gte=0,lte=100"`
}

var simulateValidator = validator.New()

// Validate applies the 0..100 range constraint to every simulation lever.
func (r SimulateRequest) Validate() error {
	if err := simulateValidator.Struct(r); err != nil {
		return fmt.Errorf("invalid simulation parameters: %w", err)
	}
	return nil
}

// SimulateResult is the full response body for simulate(): a GeoJSON
// FeatureCollection of scored locations plus summary counts.
type SimulateResult struct {
	FeatureCollection *geojson.FeatureCollection `json:"feature_collection"`
	TotalEvents       int                        `json:"total_events"`
	CriticalCount     int                        `json:"critical_count"`
	HighCount         int                        `json:"high_count"`
	MediumCount       int                        `json:"medium_count"`
	LowCount          int                        `json:"low_count"`
	MinimalCount      int                        `json:"minimal_count"`
	SimulationActive  bool                       `json:"simulation_active"`
	SimulationParams  SimulateRequest            `json:"simulation_params"`
	Timestamp         time.Time                  `json:"timestamp"`
}

// Simulate re-scores every persisted event against the given what-if
// parameters, implementing simulate(). It never mutates persisted
// signals: every call produces a fresh in-memory result set.
func (s *Service) Simulate(ctx context.Context, limit int, req SimulateRequest) (SimulateResult, error) {
	if err := req.Validate(); err != nil {
		return SimulateResult{}, err
	}

	events, err := s.events.List(ctx, limit)
	if err != nil {
		return SimulateResult{}, fmt.Errorf("failed to list events for simulation: %w", err)
	}

	simParams := &SimulationParams{
		FuelPriceIndex:     req.FuelPriceIndex,
		InflationRate:      req.InflationRate,
		ChatterIntensity:   req.ChatterIntensity,
		UrbanFuelThreshold: s.cfg.UrbanFuelThreshold,
	}

	fc := geojson.NewFeatureCollection()
	result := SimulateResult{
		TotalEvents:      len(events),
		SimulationActive: true,
		SimulationParams: req,
		Timestamp:        time.Now(),
	}

	simulationID := uuid.NewString()
	for _, e := range events {
		in, err := s.contextFor(ctx, e.State, e.LGA)
		if err != nil {
			return SimulateResult{}, err
		}
		in.Event = e
		in.Simulation = simParams

		signal := Compute(in, uuid.NewString(), time.Now())
		signal.Simulation.SimulationID = simulationID

		switch signal.RiskLevel {
		case domain.RiskCritical:
			result.CriticalCount++
		case domain.RiskHigh:
			result.HighCount++
		case domain.RiskMedium:
			result.MediumCount++
		case domain.RiskLow:
			result.LowCount++
		default:
			result.MinimalCount++
		}

		fc.Append(featureFor(signal))
	}

	result.FeatureCollection = fc
	return result, nil
}

// featureFor builds the GeoJSON feature for one simulated signal. A signal
// with no known location still gets a feature (at the null island origin,
// flagged via has_geo) so the response's total_events count always matches
// the feature count.
func featureFor(signal domain.RiskSignal) *geojson.Feature {
	point := orb.Point{0, 0}
	hasGeo := false
	if signal.Geo != nil {
		point = orb.Point{signal.Geo.Lon, signal.Geo.Lat}
		hasGeo = true
	}

	f := geojson.NewFeature(point)
	f.Properties["has_geo"] = hasGeo
	f.Properties["risk_score"] = signal.RiskScore
	f.Properties["risk_level"] = string(signal.RiskLevel)
	f.Properties["status"] = string(signal.Status)
	f.Properties["trigger_reason"] = signal.TriggerReason
	f.Properties["is_urban"] = signal.Simulation.IsUrban
	f.Properties["heatmap_radius_km"] = signal.Simulation.HeatmapRadiusKM
	if signal.Simulation.HeatmapWeight != nil {
		f.Properties["heatmap_weight"] = *signal.Simulation.HeatmapWeight
	}
	f.Properties["state"] = signal.State
	f.Properties["lga"] = signal.LGA
	return f
}
