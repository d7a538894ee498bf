package domain

import "time"

// EventType is the normalized conflict-event category. Unknown values from
// an LLM response coerce to EventTypeUnknown at the validation boundary,
// never propagated raw.
type EventType string

const (
	EventTypeAttack     EventType = "attack"
	EventTypeProtest    EventType = "protest"
	EventTypeClash      EventType = "clash"
	EventTypeKidnapping EventType = "kidnapping"
	EventTypeBanditry   EventType = "banditry"
	EventTypeTerrorism  EventType = "terrorism"
	EventTypeCommunal   EventType = "communal"
	EventTypeViolence   EventType = "violence"
	EventTypeConflict   EventType = "conflict"
	EventTypeOther      EventType = "other"
	EventTypeUnknown    EventType = "unknown"
)

var knownEventTypes = map[EventType]struct{}{
	EventTypeAttack: {}, EventTypeProtest: {}, EventTypeClash: {},
	EventTypeKidnapping: {}, EventTypeBanditry: {}, EventTypeTerrorism: {},
	EventTypeCommunal: {}, EventTypeViolence: {}, EventTypeConflict: {},
	EventTypeOther: {},
}

// NormalizeEventType lowercases and maps a raw LLM value to the allowed
// set, coercing anything unrecognized to EventTypeUnknown.
func NormalizeEventType(raw string) EventType {
	et := EventType(lowerASCII(raw))
	if _, ok := knownEventTypes[et]; ok {
		return et
	}
	return EventTypeUnknown
}

// Severity is the normalized event severity.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

var knownSeverities = map[Severity]struct{}{
	SeverityLow: {}, SeverityMedium: {}, SeverityHigh: {}, SeverityCritical: {},
}

// NormalizeSeverity lowercases and maps a raw LLM value to the allowed set.
func NormalizeSeverity(raw string) Severity {
	s := Severity(lowerASCII(raw))
	if _, ok := knownSeverities[s]; ok {
		return s
	}
	return SeverityUnknown
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// ParsedEvent is created by the Extraction Service after successful LLM
// extraction and is immutable thereafter.
type ParsedEvent struct {
	ID              string    `json:"id"`
	ArticleID       string    `json:"article_id"`
	EventType       EventType `json:"event_type"`
	State           string    `json:"state"`
	LGA             string    `json:"lga"`
	Severity        Severity  `json:"severity"`
	Fatalities      int       `json:"fatalities"`
	ConflictActor   string    `json:"conflict_actor,omitempty"`
	ParsedAt        time.Time `json:"parsed_at"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`

	// Title and Content are carried through from the source Article so the
	// Scoring Service can run its farmer-herder keyword match without a
	// second document-store round trip. They are internal bookkeeping
	// rather than part of the event wire schema proper, but are harmless
	// additional fields on the events queue message.
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// ExtractionResult is what an Analyzer returns for one article, prior to
// ID assignment and persistence.
type ExtractionResult struct {
	EventType     string
	State         string
	LGA           string
	Severity      string
	Fatalities    int
	ConflictActor string
	Confidence    *float64
}
