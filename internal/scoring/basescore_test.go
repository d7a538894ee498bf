package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

func TestBaseScoreFor(t *testing.T) {
	got := baseScoreFor(domain.EventTypeClash, domain.SeverityCritical)
	assert.Equal(t, BaseScore+40+30, got)
}

func TestBaseScoreForUnknownInputs(t *testing.T) {
	got := baseScoreFor(domain.EventTypeUnknown, domain.SeverityUnknown)
	assert.Equal(t, BaseScore, got)
}
