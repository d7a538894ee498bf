package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveRiskLevelBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskLevel
	}{
		{0, RiskMinimal},
		{19.9, RiskMinimal},
		{20, RiskLow},
		{39.9, RiskLow},
		{40, RiskMedium},
		{59.9, RiskMedium},
		{60, RiskHigh},
		{79.9, RiskHigh},
		{80, RiskCritical},
		{100, RiskCritical},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DeriveRiskLevel(c.score), "DeriveRiskLevel(%.1f)", c.score)
	}
}

func TestDeriveStatusBoundary(t *testing.T) {
	assert.Equal(t, StatusNormal, DeriveStatus(79.9), "expected NORMAL below 80")
	assert.Equal(t, StatusCritical, DeriveStatus(80), "expected CRITICAL at exactly 80")
}
