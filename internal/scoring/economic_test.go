package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInflationBonus(t *testing.T) {
	cases := []struct {
		rate float64
		want float64
	}{
		{0, 0},
		{20, 0},
		{25, 10},
		{30, 20},
		{40, 20}, // capped
		{100, 20},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, inflationBonus(c.rate), "inflationBonus(%.1f)", c.rate)
	}
}

func TestSimulationFuelBonus(t *testing.T) {
	cases := []struct {
		index float64
		want  float64
	}{
		{0, 0},
		{50, 10},
		{100, 20},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, simulationFuelBonus(c.index), "simulationFuelBonus(%.1f)", c.index)
	}
}

func TestNonSimulationFuelBonus(t *testing.T) {
	cases := []struct {
		price float64
		want  float64
	}{
		{700, 0},
		{650, 0},
		{720, 2},
		{900, 20}, // capped
	}
	for _, c := range cases {
		assert.Equal(t, c.want, nonSimulationFuelBonus(c.price), "nonSimulationFuelBonus(%.1f)", c.price)
	}
}
