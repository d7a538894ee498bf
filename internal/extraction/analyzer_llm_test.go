package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naija-watch/conflict-monitor/internal/apperrors"
)

func TestParseExtractedShapeValidObject(t *testing.T) {
	raw := `{"Event_Type": "attack", "State": "Lagos", "LGA": "Ikeja", "Severity": "medium"}`
	shape, err := parseExtractedShape(raw)
	require.NoError(t, err)
	assert.Equal(t, "attack", shape.EventType)
	assert.Equal(t, "Lagos", shape.State)
	assert.Equal(t, "Ikeja", shape.LGA)
	assert.Equal(t, "medium", shape.Severity)
}

func TestParseExtractedShapeStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"Event_Type\": \"clash\", \"State\": \"Benue\", \"LGA\": \"Guma\", \"Severity\": \"critical\"}\n```"
	shape, err := parseExtractedShape(raw)
	require.NoError(t, err)
	assert.Equal(t, "clash", shape.EventType)
}

func TestParseExtractedShapeArrayTakesFirstElement(t *testing.T) {
	raw := `[{"Event_Type": "banditry", "State": "Zamfara", "LGA": "Gusau", "Severity": "high"},
	        {"Event_Type": "other", "State": "x", "LGA": "y", "Severity": "low"}]`
	shape, err := parseExtractedShape(raw)
	require.NoError(t, err)
	assert.Equal(t, "banditry", shape.EventType, "an array response takes its first element")
}

func TestParseExtractedShapeNonJSONIsValidationFailure(t *testing.T) {
	_, err := parseExtractedShape("the model refused to answer")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidationFailure), "non-JSON must be a terminal validation failure, not a retriable error")
}

func TestParseExtractedShapeMissingFieldsIsValidationFailure(t *testing.T) {
	_, err := parseExtractedShape(`{"Event_Type": "attack", "State": "Lagos"}`)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidationFailure))
}

func TestParseExtractedShapeEmptyArrayIsValidationFailure(t *testing.T) {
	_, err := parseExtractedShape("[]")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidationFailure))
}
