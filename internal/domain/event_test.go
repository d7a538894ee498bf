package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEventType(t *testing.T) {
	cases := map[string]EventType{
		"Attack":     EventTypeAttack,
		"CLASH":      EventTypeClash,
		"protest":    EventTypeProtest,
		"gibberish":  EventTypeUnknown,
		"":           EventTypeUnknown,
		"terrorism ": EventTypeUnknown, // trailing space is not trimmed, so this should not match
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeEventType(raw), "NormalizeEventType(%q)", raw)
	}
}

func TestNormalizeSeverity(t *testing.T) {
	cases := map[string]Severity{
		"Low":      SeverityLow,
		"HIGH":     SeverityHigh,
		"critical": SeverityCritical,
		"extreme":  SeverityUnknown,
		"":         SeverityUnknown,
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeSeverity(raw), "NormalizeSeverity(%q)", raw)
	}
}
