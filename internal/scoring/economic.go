package scoring

import "math"

// fuelPriceBaseline is the non-simulation reference fuel price (naira per
// litre) the live scoring path measures excess against.
const fuelPriceBaseline = 700.0

// inflationBonus implements step 2's inflation modifier: if inflation_rate
// exceeds 20, add min((inflation_rate-20)*2, 20). At exactly 20 this adds
// 0; at 40 it adds exactly 20, the cap.
func inflationBonus(inflationRate float64) float64 {
	if inflationRate <= 20 {
		return 0
	}
	return math.Min((inflationRate-20)*2, 20)
}

// simulationFuelBonus implements the simulation-path fuel modifier:
// (fuel_price_index/100)*20.
func simulationFuelBonus(fuelPriceIndex float64) float64 {
	return (fuelPriceIndex / 100) * 20
}

// nonSimulationFuelBonus implements the non-simulation path: a bonus
// proportional to the amount fuel_price exceeds the 700-naira baseline,
// capped at 20 so a single location's price spike can't dominate the
// score the way the economic igniter is allowed to in simulation mode.
func nonSimulationFuelBonus(fuelPrice float64) float64 {
	if fuelPrice <= fuelPriceBaseline {
		return 0
	}
	excess := fuelPrice - fuelPriceBaseline
	return math.Min(excess/10, 20)
}
