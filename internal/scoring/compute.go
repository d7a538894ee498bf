package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

// SimulationParams carries the three what-if levers simulate() accepts;
// nil on the non-simulation predict() path.
type SimulationParams struct {
	FuelPriceIndex   float64
	InflationRate    float64
	ChatterIntensity float64

	// UrbanFuelThreshold is the fuel-price-index bar the Economic Igniter
	// fires above for urban LGAs; zero means the default of 80
	// (URBAN_FUEL_THRESHOLD).
	UrbanFuelThreshold float64
}

// ScoringInput bundles one parsed event with the reference-data context
// Compute needs to run the full scoring pipeline. Any reference pointer may be
// nil when no matching row exists; Compute degrades gracefully rather than
// erroring, since a missing reference row is normal (most LGAs have no
// mining site, most states aren't on a border).
type ScoringInput struct {
	Event      domain.ParsedEvent
	Geo        *domain.GeoPoint
	Economic   *domain.EconomicRecord
	Strategic  *domain.StrategicIndicators
	Climate    []domain.ClimateZone
	Mining     []domain.MiningSite
	Border     *domain.BorderZone
	Simulation *SimulationParams
	Version    int
}

const (
	climateMultiplier      = 1.5
	climateFloodThreshold  = 20.0
	miningProximityKM      = 10.0
	miningBonus            = 15.0
	borderBonus            = 20.0
	climateVulnHighBar     = 0.7
	miningDensityHighBar   = 0.6
	economicIgniterFactor  = 1.5
	defaultUrbanFuelBar    = 80.0
)

// climateSensitiveTypes are event types the flood-inundation multiplier
// applies to; a protest or kidnapping in a flood zone isn't a climate-driven
// escalation the way a clash or open conflict is.
var climateSensitiveTypes = map[domain.EventType]struct{}{
	domain.EventTypeClash:    {},
	domain.EventTypeConflict: {},
	domain.EventTypeViolence: {},
}

// lakurawaStates are the Sahelian border states where High/Critical border
// activity indicates Lakurawa presence.
var lakurawaStates = map[string]struct{}{
	"sokoto": {},
	"kebbi":  {},
}

// Compute runs the full risk-scoring pipeline and returns a
// complete RiskSignal. id and calculatedAt are supplied by the caller so
// Compute stays a pure function of its inputs.
func Compute(in ScoringInput, id string, calculatedAt time.Time) domain.RiskSignal {
	var reasons []string
	add := func(reason string) { reasons = append(reasons, reason) }

	e := in.Event
	score := baseScoreFor(e.EventType, e.Severity)
	add(fmt.Sprintf("base score %.0f (%s/%s)", score, e.EventType, e.Severity))

	var econSnapshot *domain.EconomicSnapshot
	isSim := in.Simulation != nil

	if isSim {
		infBonus := inflationBonus(in.Simulation.InflationRate)
		score += infBonus
		if infBonus > 0 {
			add(fmt.Sprintf("Elevated inflation (%.1f%%) added %.1f", in.Simulation.InflationRate, infBonus))
		}
		fuelBonus := simulationFuelBonus(in.Simulation.FuelPriceIndex)
		score += fuelBonus
		if fuelBonus > 0 {
			add(fmt.Sprintf("simulated fuel index %.0f added %.1f", in.Simulation.FuelPriceIndex, fuelBonus))
		}
	} else if in.Economic != nil {
		infBonus := inflationBonus(in.Economic.InflationRate)
		score += infBonus
		if infBonus > 0 {
			add(fmt.Sprintf("Elevated inflation (%.1f%%) added %.1f", in.Economic.InflationRate, infBonus))
		}
		fuelBonus := nonSimulationFuelBonus(in.Economic.FuelPrice)
		score += fuelBonus
		if fuelBonus > 0 {
			add(fmt.Sprintf("fuel price %.0f added %.1f", in.Economic.FuelPrice, fuelBonus))
		}
		econSnapshot = &domain.EconomicSnapshot{FuelPrice: in.Economic.FuelPrice, Inflation: in.Economic.InflationRate}
	}

	var multi domain.Multidimensional

	if in.Geo != nil {
		if zone, ok := climateZoneFor(*in.Geo, in.Climate); ok {
			flood := zone.FloodInundationIndex
			multi.FloodInundationIndex = &flood
			if _, sensitive := climateSensitiveTypes[e.EventType]; sensitive && flood > climateFloodThreshold {
				score *= climateMultiplier
				multi.ConflictDriver = "Environmental/Climate"
				add(fmt.Sprintf("flood zone %s (%.0f%%) applied %.1fx multiplier", zone.Region, flood, climateMultiplier))
			}
		}

		if site, dist, ok := nearestMiningSite(*in.Geo, in.Mining); ok && dist < miningProximityKM {
			d := dist
			multi.MiningProximityKM = &d
			multi.MiningSiteName = site.Name
			rate := site.InformalTaxationRate
			multi.InformalTaxationRate = &rate
			multi.HighFundingPotential = true
			score += miningBonus
			add(fmt.Sprintf("High Funding Potential: %.1fkm from mining site %s added %.0f", dist, site.Name, miningBonus))
		}
	}

	if in.Border != nil {
		multi.BorderActivity = in.Border.BorderActivity
		permeability := in.Border.BorderPermeabilityScore
		multi.BorderPermeabilityScore = &permeability
		multi.GroupAffiliation = in.Border.GroupAffiliation
		multi.SophisticatedIEDUsage = in.Border.SophisticatedIEDUsage

		level := strings.ToLower(in.Border.BorderActivity)
		_, sahelian := lakurawaStates[strings.ToLower(e.State)]
		if (level == "high" || level == "critical") && sahelian {
			multi.LakurawaPresence = true
			score += borderBonus
			add(fmt.Sprintf("Lakurawa Presence: border activity %s added %.0f", in.Border.BorderActivity, borderBonus))
		}
	}

	var highEscalation bool
	var strategicSnapshot *domain.Strategic
	if in.Strategic != nil {
		strategicSnapshot = &domain.Strategic{
			ClimateVulnerability: in.Strategic.ClimateVulnerability,
			MiningDensity:        in.Strategic.MiningDensity,
			MigrationPressure:    in.Strategic.MigrationPressure,
			PovertyRate:          in.Strategic.PovertyRate,
		}
		if in.Strategic.ClimateVulnerability > climateVulnHighBar {
			bonus := in.Strategic.ClimateVulnerability * 15
			score += bonus
			highEscalation = true
			add(fmt.Sprintf("state climate vulnerability %.2f added %.1f", in.Strategic.ClimateVulnerability, bonus))
		}
		if in.Strategic.MiningDensity > miningDensityHighBar {
			bonus := in.Strategic.MiningDensity * 20
			score += bonus
			highEscalation = true
			add(fmt.Sprintf("state mining density %.2f added %.1f", in.Strategic.MiningDensity, bonus))
		}
	}

	isFarmerHerder := isFarmerHerderConflict(e.Title, e.Content, string(e.EventType), e.ConflictActor)
	if isFarmerHerder && in.Strategic != nil && in.Strategic.MigrationPressure > 0.5 {
		factor := 1 + in.Strategic.MigrationPressure
		score *= factor
		add(fmt.Sprintf("farmer-herder conflict with migration pressure %.2f applied %.2fx multiplier", in.Strategic.MigrationPressure, factor))
	}

	isUrban := isUrbanLGA(e.LGA)
	urbanFuelBar := defaultUrbanFuelBar
	if isSim && in.Simulation.UrbanFuelThreshold > 0 {
		urbanFuelBar = in.Simulation.UrbanFuelThreshold
	}
	if isSim && isUrban && in.Simulation.FuelPriceIndex > urbanFuelBar {
		score *= economicIgniterFactor
		add(fmt.Sprintf("economic igniter: urban LGA at fuel index %.0f applied %.1fx multiplier", in.Simulation.FuelPriceIndex, economicIgniterFactor))
	}

	score = math.Max(0, math.Min(100, score))

	level := domain.DeriveRiskLevel(score)
	status := domain.DeriveStatus(score)

	sim := domain.SimulationFields{IsSimulation: isSim, IsUrban: isUrban, HeatmapRadiusKM: 5}
	if isSim {
		radius := 5 + (in.Simulation.ChatterIntensity/100)*45
		weight := math.Min(1, (score/100)*(1+in.Simulation.ChatterIntensity/100))
		sim.HeatmapRadiusKM = radius
		sim.HeatmapWeight = &weight
		add(fmt.Sprintf("social trigger: chatter intensity %.0f set heatmap radius %.1fkm", in.Simulation.ChatterIntensity, radius))
	}

	reasonPrefix := ""
	if highEscalation {
		reasonPrefix = "[HIGH ESCALATION POTENTIAL] "
	}

	return domain.RiskSignal{
		ID:                     id,
		EventID:                e.ID,
		State:                  e.State,
		LGA:                    e.LGA,
		Severity:               e.Severity,
		EventType:              e.EventType,
		RiskScore:              score,
		RiskLevel:              level,
		Status:                 status,
		TriggerReason:          reasonPrefix + strings.Join(reasons, "; "),
		CalculatedAt:           calculatedAt,
		Geo:                    in.Geo,
		Economic:               econSnapshot,
		Multidimensional:       multi,
		Strategic:              strategicSnapshot,
		HighEscalationPotential: highEscalation,
		IsFarmerHerderConflict: isFarmerHerder,
		Simulation:             sim,
		Version:                in.Version,
	}
}
