package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

func baseEvent() domain.ParsedEvent {
	return domain.ParsedEvent{
		ID:        "evt-1",
		State:     "Borno",
		LGA:       "Some Rural LGA",
		EventType: domain.EventTypeAttack,
		Severity:  domain.SeverityHigh,
	}
}

func TestComputeBaseCaseNoModifiers(t *testing.T) {
	in := ScoringInput{Event: baseEvent()}
	signal := Compute(in, "sig-1", time.Now())

	want := baseScoreFor(domain.EventTypeAttack, domain.SeverityHigh)
	assert.Equal(t, want, signal.RiskScore)
	assert.Equal(t, domain.DeriveRiskLevel(want), signal.RiskLevel)
	assert.False(t, signal.HighEscalationPotential, "expected no high escalation flag with no strategic data")
	assert.False(t, signal.Simulation.IsSimulation, "expected is_simulation=false on the predict() path")
}

func TestComputeClampsToHundred(t *testing.T) {
	e := baseEvent()
	e.EventType = domain.EventTypeClash
	e.Severity = domain.SeverityCritical

	in := ScoringInput{
		Event: e,
		Border: &domain.BorderZone{
			State: "Borno", BorderActivity: "critical",
		},
		Strategic: &domain.StrategicIndicators{
			State: "Borno", MigrationPressure: 0.9, ClimateVulnerability: 0.9, MiningDensity: 0.9,
		},
	}
	e.Title = "Fulani herdsmen clash over grazing land"
	in.Event = e

	signal := Compute(in, "sig-2", time.Now())
	assert.True(t, signal.RiskScore <= 100, "RiskScore = %.1f, expected clamp at 100", signal.RiskScore)
	assert.Equal(t, domain.RiskCritical, signal.RiskLevel)
	assert.True(t, signal.HighEscalationPotential, "expected high escalation potential with climate_vulnerability and mining_density above their bars")
	assert.True(t, signal.IsFarmerHerderConflict, "expected farmer-herder conflict to be detected")
}

func TestComputeSimulationPathAppliesEconomicIgniter(t *testing.T) {
	e := baseEvent()
	e.LGA = "Ikeja" // urban

	in := ScoringInput{
		Event: e,
		Simulation: &SimulationParams{
			FuelPriceIndex:   90,
			InflationRate:    10,
			ChatterIntensity: 50,
		},
	}

	signal := Compute(in, "sig-3", time.Now())
	assert.True(t, signal.Simulation.IsSimulation, "expected is_simulation=true on the simulate() path")
	assert.True(t, signal.Simulation.IsUrban, "expected is_urban=true for Ikeja")
	assert.NotNil(t, signal.Simulation.HeatmapWeight, "expected a heatmap weight to be set on the simulation path")
	assert.True(t, signal.Simulation.HeatmapRadiusKM > 5, "expected heatmap radius to grow past the 5km floor with chatter intensity 50, got %.1f", signal.Simulation.HeatmapRadiusKM)
}

func TestComputeClimateFloodMultiplierOnlyAppliesToSensitiveTypes(t *testing.T) {
	geo := domain.GeoPoint{Lon: 5, Lat: 5}
	zones := []domain.ClimateZone{
		{
			Region:               "niger-delta",
			FloodInundationIndex: 50,
			Polygon: []domain.GeoPoint{
				{Lon: 0, Lat: 0}, {Lon: 0, Lat: 10}, {Lon: 10, Lat: 10}, {Lon: 10, Lat: 0},
			},
		},
	}

	clashEvent := baseEvent()
	clashEvent.EventType = domain.EventTypeClash
	clashIn := ScoringInput{Event: clashEvent, Geo: &geo, Climate: zones}
	clashSignal := Compute(clashIn, "sig-4", time.Now())

	protestEvent := baseEvent()
	protestEvent.EventType = domain.EventTypeProtest
	protestIn := ScoringInput{Event: protestEvent, Geo: &geo, Climate: zones}
	protestSignal := Compute(protestIn, "sig-5", time.Now())

	clashBase := baseScoreFor(domain.EventTypeClash, domain.SeverityHigh)
	assert.Equal(t, math.Min(100, clashBase*climateMultiplier), clashSignal.RiskScore, "clash in flood zone")
	assert.Equal(t, "Environmental/Climate", clashSignal.Multidimensional.ConflictDriver)

	protestBase := baseScoreFor(domain.EventTypeProtest, domain.SeverityHigh)
	assert.Equal(t, protestBase, protestSignal.RiskScore, "protest in flood zone should not receive the multiplier")
}

func TestComputeMiningProximityBonus(t *testing.T) {
	geo := domain.GeoPoint{Lon: 7.0, Lat: 9.0}
	sites := []domain.MiningSite{
		{Name: "Zamfara Gold Site", Lon: 7.001, Lat: 9.001, InformalTaxationRate: 0.4},
	}

	in := ScoringInput{Event: baseEvent(), Geo: &geo, Mining: sites}
	signal := Compute(in, "sig-6", time.Now())

	want := math.Min(100, baseScoreFor(domain.EventTypeAttack, domain.SeverityHigh)+miningBonus)
	assert.Equal(t, want, signal.RiskScore)
	assert.True(t, signal.Multidimensional.HighFundingPotential, "expected high_funding_potential within 10km of a mining site")
	assert.Contains(t, signal.TriggerReason, "High Funding Potential")
}

func TestComputeLakurawaRequiresSahelianState(t *testing.T) {
	border := &domain.BorderZone{State: "Sokoto", BorderActivity: "High", BorderPermeabilityScore: 0.8}

	sokoto := baseEvent()
	sokoto.State = "Sokoto"
	sokotoSignal := Compute(ScoringInput{Event: sokoto, Border: border}, "sig-8", time.Now())

	base := baseScoreFor(domain.EventTypeAttack, domain.SeverityHigh)
	assert.Equal(t, math.Min(100, base+borderBonus), sokotoSignal.RiskScore, "Sokoto with High border activity")
	assert.True(t, sokotoSignal.Multidimensional.LakurawaPresence)
	assert.Contains(t, sokotoSignal.TriggerReason, "Lakurawa Presence")

	borno := baseEvent() // Borno is not a Lakurawa corridor state
	bornoSignal := Compute(ScoringInput{Event: borno, Border: &domain.BorderZone{State: "Borno", BorderActivity: "High"}}, "sig-9", time.Now())
	assert.Equal(t, base, bornoSignal.RiskScore, "High border activity outside Sokoto/Kebbi adds nothing")
	assert.False(t, bornoSignal.Multidimensional.LakurawaPresence)
}

func TestComputeInflationReasonMentionsElevatedInflation(t *testing.T) {
	in := ScoringInput{
		Event:    baseEvent(),
		Economic: &domain.EconomicRecord{State: "Borno", InflationRate: 22.5, FuelPrice: 650},
	}
	signal := Compute(in, "sig-10", time.Now())
	assert.Contains(t, signal.TriggerReason, "Elevated inflation")
}

func TestComputeEconomicIgniterThresholdBoundary(t *testing.T) {
	// A low-base event keeps the 1.5x product under the 100 clamp so the
	// multiplier's exact effect stays observable.
	e := baseEvent()
	e.LGA = "Ikeja"
	e.EventType = domain.EventTypeProtest
	e.Severity = domain.SeverityLow

	at80 := Compute(ScoringInput{Event: e, Simulation: &SimulationParams{FuelPriceIndex: 80}}, "sig-b1", time.Now())
	at81 := Compute(ScoringInput{Event: e, Simulation: &SimulationParams{FuelPriceIndex: 81}}, "sig-b2", time.Now())

	base := baseScoreFor(domain.EventTypeProtest, domain.SeverityLow)
	assert.Equal(t, base+simulationFuelBonus(80), at80.RiskScore, "fuel index exactly 80 must not trigger the igniter")
	assert.Equal(t, (base+simulationFuelBonus(81))*economicIgniterFactor, at81.RiskScore, "fuel index 81 triggers the igniter for an urban LGA")

	rural := e // non-urban LGA
	rural.LGA = "Some Rural LGA"
	ruralAt81 := Compute(ScoringInput{Event: rural, Simulation: &SimulationParams{FuelPriceIndex: 81}}, "sig-b3", time.Now())
	assert.Equal(t, base+simulationFuelBonus(81), ruralAt81.RiskScore, "the igniter never fires outside urban LGAs")
}

func TestComputeHeatmapBoundaries(t *testing.T) {
	e := baseEvent()

	quiet := Compute(ScoringInput{Event: e, Simulation: &SimulationParams{ChatterIntensity: 0}}, "sig-h1", time.Now())
	loud := Compute(ScoringInput{Event: e, Simulation: &SimulationParams{ChatterIntensity: 100}}, "sig-h2", time.Now())

	assert.Equal(t, 5.0, quiet.Simulation.HeatmapRadiusKM, "chatter 0 pins the radius at the 5km floor")
	assert.Equal(t, 50.0, loud.Simulation.HeatmapRadiusKM, "chatter 100 reaches the 50km ceiling")
}

func TestComputeVersionIsPropagated(t *testing.T) {
	in := ScoringInput{Event: baseEvent(), Version: 7}
	signal := Compute(in, "sig-7", time.Now())
	assert.Equal(t, 7, signal.Version)
}
