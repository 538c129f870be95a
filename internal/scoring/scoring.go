// Package scoring values blackjack hands.
package scoring

import (
	"fmt"

	"github.com/lox/blackjack/internal/deck"
)

const (
	// Blackjack is the target total.
	Blackjack = 21
	// softBonus is what an ace adds when it counts as 11 instead of 1.
	softBonus = 10
)

// CardValue returns the point value of a card with aces counted as 11.
func CardValue(c deck.Card) int {
	switch {
	case c.Rank == deck.Ace:
		return 11
	case c.Rank.IsTenValue():
		return 10
	default:
		return int(c.Rank)
	}
}

// HardLow sums the hand counting every ace as 1.
func HardLow(cards []deck.Card) int {
	total := 0
	for _, c := range cards {
		if c.IsAce() {
			total++
			continue
		}
		total += CardValue(c)
	}
	return total
}

// evaluate counts aces as 11 and demotes them one at a time while the total
// is over 21. It returns the total and the number of aces still worth 11.
func evaluate(cards []deck.Card) (total, softAces int) {
	for _, c := range cards {
		if c.IsAce() {
			softAces++
		}
		total += CardValue(c)
	}
	for total > Blackjack && softAces > 0 {
		total -= softBonus
		softAces--
	}
	return total, softAces
}

// Best returns the highest total that does not bust, or the lowest total when
// every valuation busts.
func Best(cards []deck.Card) int {
	total, _ := evaluate(cards)
	return total
}

// IsSoft reports whether an ace is still counted as 11 in Best.
func IsSoft(cards []deck.Card) bool {
	_, soft := evaluate(cards)
	return soft > 0
}

// HasAce reports whether the hand holds at least one ace.
func HasAce(cards []deck.Card) bool {
	for _, c := range cards {
		if c.IsAce() {
			return true
		}
	}
	return false
}

// Display renders the hand total for players: "7 / 17" while an ace can still
// count high, otherwise the single total.
func Display(cards []deck.Card) string {
	low := HardLow(cards)
	if !HasAce(cards) {
		return fmt.Sprintf("%d", low)
	}
	if high := low + softBonus; high <= Blackjack {
		return fmt.Sprintf("%d / %d", low, high)
	}
	return fmt.Sprintf("%d", low)
}

// IsBust reports whether the hand is over 21.
func IsBust(cards []deck.Card) bool {
	return Best(cards) > Blackjack
}

// IsNatural reports whether the hand is a two-card 21. Callers decide whether
// the hand is eligible (only the initial, unsplit hand is).
func IsNatural(cards []deck.Card) bool {
	return len(cards) == 2 && Best(cards) == Blackjack
}
