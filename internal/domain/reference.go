package domain

import "time"

// EconomicRecord is keyed by (state, lga?); lga is optional for state-level
// fallback records. Read-only after load.
type EconomicRecord struct {
	State            string    `json:"state"`
	LGA              string    `json:"lga,omitempty"`
	InflationRate    float64   `json:"inflation_rate"`
	FuelPrice        float64   `json:"fuel_price"`
	UnemploymentRate *float64  `json:"unemployment_rate,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
	Source           string    `json:"source,omitempty"`
	Geo              *GeoPoint `json:"geo,omitempty"`
}

// StrategicIndicators is keyed by state; all fields are normalized to
// [0,1]. Read-only after load.
type StrategicIndicators struct {
	State                string  `json:"state"`
	PovertyRate          float64 `json:"poverty_rate"`
	InflationRate        float64 `json:"inflation_rate"`
	Unemployment         float64 `json:"unemployment"`
	MiningDensity        float64 `json:"mining_density"`
	ClimateVulnerability float64 `json:"climate_vulnerability"`
	MigrationPressure    float64 `json:"migration_pressure"`
}

// ClimateZone is a reference polygon with a flooding-risk profile.
type ClimateZone struct {
	Region              string  `json:"region"`
	Indicator           string  `json:"indicator"`
	RecessionIndex      float64 `json:"recession_index"`
	FloodInundationIndex float64 `json:"flood_inundation_index"`
	ImpactZone          string  `json:"impact_zone"`
	ConflictCorrelation float64 `json:"conflict_correlation"`
	// Polygon is the boundary used for point-in-polygon lookups; stored as
	// a flat lon/lat ring.
	Polygon []GeoPoint `json:"polygon"`
}

// MiningSite is a reference point with a haversine-distance target.
type MiningSite struct {
	State                string  `json:"state"`
	Name                 string  `json:"name"`
	MineralType          string  `json:"mineral_type"`
	InformalTaxationRate float64 `json:"informal_taxation_rate"`
	ActivityLevel        string  `json:"activity_level"`
	SecurityIncidents30d int     `json:"security_incidents_last_30_days"`
	Lon                  float64 `json:"lon"`
	Lat                  float64 `json:"lat"`
}

// BorderZone is a reference polygon/point with Sahelian border attributes.
type BorderZone struct {
	State                     string  `json:"state"`
	BorderPermeabilityScore   float64 `json:"border_permeability_score"`
	BorderActivity            string  `json:"border_activity"`
	GroupAffiliation          string  `json:"group_affiliation"`
	LakurawaPresenceConfirmed bool    `json:"lakurawa_presence_confirmed"`
	SophisticatedIEDUsage     bool    `json:"sophisticated_ied_usage"`
}

// AutomationLogDetails is the nested detail block of an AutomationLog.
type AutomationLogDetails struct {
	ArticlesCount   int     `json:"articles_count"`
	HighRiskCount   int     `json:"high_risk_count"`
	DurationSeconds float64 `json:"duration_seconds"`
	DBSuccess       bool    `json:"db_success"`
	MQSuccess       bool    `json:"mq_success"`
}

// AutomationLog is an append-only record of one ingestion run. The
// artifact store retains the last 100.
type AutomationLog struct {
	Timestamp time.Time             `json:"timestamp"`
	EventType string                `json:"event_type"`
	Status    string                `json:"status"`
	Details   AutomationLogDetails  `json:"details"`
}

// HighRiskArticleRef is one entry in a HighRiskAlert.
type HighRiskArticleRef struct {
	Title     string  `json:"title"`
	Source    string  `json:"source"`
	RiskScore float64 `json:"risk_score"`
}

// HighRiskAlert is an append-only record grouping all pre-scored
// high-risk articles from one ingestion run. The artifact store retains
// the last 20.
type HighRiskAlert struct {
	Timestamp time.Time            `json:"timestamp"`
	AlertType string               `json:"alert_type"`
	Count     int                  `json:"count"`
	Articles  []HighRiskArticleRef `json:"articles"`
}
