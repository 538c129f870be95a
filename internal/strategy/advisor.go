// Package strategy recommends basic-strategy actions with a pair of Hi-Lo index
// deviations.
package strategy

import (
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/scoring"
)

// Situation is everything the advisor looks at.
type Situation struct {
	Hand       []deck.Card
	DealerUp   deck.Card
	TrueCount  float64
	Balance    int
	CurrentBet int
}

// Recommend returns the advised action for the situation. Rules are checked in
// order and the first match wins: pair splitting, two-card soft totals, hard
// totals, count-based index plays, then Hit.
func Recommend(s Situation) Action {
	if len(s.Hand) == 0 {
		return None
	}

	dealer := scoring.CardValue(s.DealerUp)
	score := scoring.Best(s.Hand)

	if action, ok := pairAction(s, dealer); ok {
		return action
	}
	if scoring.HasAce(s.Hand) && score <= scoring.Blackjack && len(s.Hand) == 2 {
		return softAction(score, dealer)
	}
	if action, ok := hardAction(score, dealer); ok {
		return action
	}
	if action, ok := indexPlay(score, dealer, s.TrueCount); ok {
		return action
	}
	return Hit
}

func pairAction(s Situation, dealer int) (Action, bool) {
	if len(s.Hand) != 2 || s.Hand[0].Rank != s.Hand[1].Rank || s.Balance < s.CurrentBet {
		return None, false
	}

	switch s.Hand[0].Rank {
	case deck.Ace, deck.Eight:
		return Split, true
	case deck.Two, deck.Three, deck.Seven:
		return Split, dealer <= 7
	case deck.Four:
		return Split, dealer == 5 || dealer == 6
	case deck.Six:
		return Split, dealer <= 6
	case deck.Nine:
		return Split, dealer <= 9 && dealer != 7
	}
	return None, false
}

func softAction(score, dealer int) Action {
	switch {
	case score >= 19:
		return Stand
	case score == 18:
		if dealer <= 6 {
			return Double
		}
		if dealer <= 8 {
			return Stand
		}
		return Hit
	case dealer == 5 || dealer == 6:
		return Double
	case dealer == 4 && score >= 15:
		return Double
	default:
		return Hit
	}
}

func hardAction(score, dealer int) (Action, bool) {
	switch {
	case score >= 17:
		return Stand, true
	case score >= 13 && dealer <= 6:
		return Stand, true
	case score == 12 && dealer >= 4 && dealer <= 6:
		return Stand, true
	case score == 11:
		return Double, true
	case score == 10 && dealer <= 9:
		return Double, true
	case score == 9 && dealer >= 3 && dealer <= 6:
		return Double, true
	}
	return None, false
}

// indexPlay holds the count-based deviations from basic strategy.
func indexPlay(score, dealer int, trueCount float64) (Action, bool) {
	switch {
	case score == 16 && dealer == 10 && trueCount >= 0:
		return Stand, true
	case score == 15 && dealer == 10 && trueCount >= 4:
		return Stand, true
	}
	return None, false
}
