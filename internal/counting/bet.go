package counting

import "math"

// BetRamp maps a true count to a suggested bet: the minimum at or below a true
// count of one, then one unit per whole point above it.
type BetRamp struct {
	Min  int
	Unit int
}

// DefaultRamp is the 1 + 10 per point spread.
var DefaultRamp = BetRamp{Min: 1, Unit: 10}

// Bet returns the suggested bet for trueCount. The result is not clamped to any
// bankroll; callers that need a placeable amount clamp it themselves.
func (r BetRamp) Bet(trueCount float64) int {
	if trueCount <= 1 {
		return r.Min
	}
	return r.Min + int(math.Floor(trueCount-1))*r.Unit
}

// RecommendedBet applies DefaultRamp.
func RecommendedBet(trueCount float64) int {
	return DefaultRamp.Bet(trueCount)
}
