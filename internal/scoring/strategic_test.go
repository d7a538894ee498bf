package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFarmerHerderConflict(t *testing.T) {
	assert.True(t, isFarmerHerderConflict("Fulani herdsmen clash with farmers", "", "clash", ""), "expected farmer-herder match on title keywords")
	assert.True(t, isFarmerHerderConflict("", "", "", "Pastoralist militia"), "expected farmer-herder match on actor keyword")
	assert.False(t, isFarmerHerderConflict("Protest over fuel prices", "", "protest", ""), "expected no farmer-herder match for an unrelated protest")
}

func TestIsFarmerHerderConflictCaseInsensitive(t *testing.T) {
	assert.True(t, isFarmerHerderConflict("CATTLE rustling dispute", "", "", ""), "expected case-insensitive keyword match")
}
