package sim

import "math"

const (
	StartingPrice  = 100.0
	BigMoveChance  = 0.03  // 3% chance of a big move per tick
	BigMoveMin     = 0.005 // Minimum big move: 0.5%
	BigMoveMax     = 0.03  // Maximum big move: 3%
	DriftMin       = -0.002
	DriftMax       = 0.002
	PriceFloor     = 0.05 // Never below 5% of the starting price
	MomentumSignal = 0.0008
)

// RandomWalk generates a reproducible n-tick series from seed. The AI action
// on each tick follows the sign of a smoothed momentum.
func RandomWalk(seed string, n int) Series {
	rng := NewSeededRNG(seed)
	series := Series{Symbol: "SIM", Ticks: make([]Tick, 0, max(n, 0))}

	price := StartingPrice
	momentum := 0.0

	for tick := 0; tick < n; tick++ {
		var change float64

		if rng.Float64() < BigMoveChance {
			move := BigMoveMin + rng.Float64()*(BigMoveMax-BigMoveMin)
			if rng.Float64() < 0.5 {
				change = move
			} else {
				change = -move
			}
		} else {
			drift := DriftMin + rng.Float64()*(DriftMax-DriftMin)
			volatility := 0.001 * math.Min(5, math.Sqrt(price/StartingPrice)*2)
			noise := volatility * (2*rng.Float64() - 1)
			change = drift + noise
		}

		price = price * (1 + change)
		if price < StartingPrice*PriceFloor {
			price = StartingPrice * PriceFloor
		}

		momentum = momentum*0.9 + change*0.1

		action := ActionHold
		switch {
		case momentum > MomentumSignal:
			action = ActionBuy
		case momentum < -MomentumSignal:
			action = ActionSell
		}
		series.Ticks = append(series.Ticks, Tick{Price: price, Action: action})
	}

	return series
}
