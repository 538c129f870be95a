// Package counting implements the Hi-Lo running count, true count derivation
// and the bet ramp that turns a true count into a suggested wager.
package counting

import (
	"math"

	"github.com/lox/blackjack/internal/deck"
)

// MinDecksRemaining floors the true count denominator near the end of a shoe.
const MinDecksRemaining = 0.5

// Tag returns the Hi-Lo tag for a rank: +1 for 2-6, -1 for tens and aces, 0 for 7-9.
func Tag(r deck.Rank) int {
	switch {
	case r >= deck.Two && r <= deck.Six:
		return 1
	case r == deck.Ace || r.IsTenValue():
		return -1
	default:
		return 0
	}
}

// Counter tracks the running count for one shoe.
type Counter struct {
	running int
}

// Update adds the card's Hi-Lo tag to the running count.
func (c *Counter) Update(card deck.Card) {
	c.running += Tag(card.Rank)
}

// Reset zeroes the count; called whenever the shoe is recreated.
func (c *Counter) Reset() {
	c.running = 0
}

// Running returns the running count.
func (c *Counter) Running() int {
	return c.running
}

// True returns the true count for the given number of cards left in the shoe.
func (c *Counter) True(remaining int) float64 {
	return TrueCount(c.running, remaining)
}

// DecksRemaining estimates the decks left in the shoe, never less than half a deck.
func DecksRemaining(remaining int) float64 {
	return math.Max(MinDecksRemaining, float64(remaining)/deck.DeckSize)
}

// TrueCount divides the running count by the decks remaining and rounds to two
// decimals. The rounded value is what both the display and the advisor use.
func TrueCount(running, remaining int) float64 {
	return round2(float64(running) / DecksRemaining(remaining))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
