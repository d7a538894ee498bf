package scoring

import "github.com/naija-watch/conflict-monitor/internal/domain"

// BaseScore is the starting point for every signal before any modifier
// fires.
const BaseScore = 30.0

// eventTypeScore centralizes the per-type scores in a single table.
// clash/attack/conflict/violence take the top of their band so a critical
// clash lands exactly at 100 before clamping; the remaining types are
// spread for a monotonic severity-within-category ordering.
var eventTypeScore = map[domain.EventType]float64{
	domain.EventTypeAttack:     38,
	domain.EventTypeClash:      40,
	domain.EventTypeConflict:   37,
	domain.EventTypeViolence:   35,
	domain.EventTypeTerrorism:  34,
	domain.EventTypeBanditry:   31,
	domain.EventTypeKidnapping: 27,
	domain.EventTypeCommunal:   22,
	domain.EventTypeProtest:    10,
	domain.EventTypeOther:      3,
	domain.EventTypeUnknown:    0,
}

// severityScore is the fixed additive severity modifier.
var severityScore = map[domain.Severity]float64{
	domain.SeverityLow:      3,
	domain.SeverityMedium:   10,
	domain.SeverityHigh:     20,
	domain.SeverityCritical: 30,
	domain.SeverityUnknown:  0,
}

// baseScoreFor is BASE=30 plus the event-type and severity additive
// modifiers.
func baseScoreFor(eventType domain.EventType, severity domain.Severity) float64 {
	return BaseScore + eventTypeScore[eventType] + severityScore[severity]
}
