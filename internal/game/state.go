package game

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// RoundState is the phase of the current round.
type RoundState int

const (
	Betting RoundState = iota
	Playing
	DealerTurn
	Resolved
)

// String returns the string representation of a round state
func (s RoundState) String() string {
	switch s {
	case Betting:
		return "betting"
	case Playing:
		return "playing"
	case DealerTurn:
		return "dealer-turn"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Outcome is how a single player hand settled.
type Outcome int

const (
	Pending Outcome = iota
	Win
	Lose
	Push
	Bust
)

// String returns the string representation of an outcome
func (o Outcome) String() string {
	switch o {
	case Win:
		return "Win"
	case Lose:
		return "Lose"
	case Push:
		return "Push"
	case Bust:
		return "Bust"
	default:
		return "Pending"
	}
}

// Recipient identifies who a card was dealt to.
type Recipient int

const (
	ToPlayer Recipient = iota
	ToDealer
)

// String returns the string representation of a recipient
func (r Recipient) String() string {
	if r == ToDealer {
		return "dealer"
	}
	return "player"
}

// PlayerHand is one of the player's hands and the stake riding on it.
type PlayerHand struct {
	Cards   []deck.Card
	Bet     int
	Doubled bool
	Outcome Outcome
	Payout  int
}

// HandResult is the settlement of one player hand.
type HandResult struct {
	Index   int
	Label   string
	Score   int
	Bet     int
	Outcome Outcome
	Payout  int
}

// RoundResult summarises a settled round.
type RoundResult struct {
	RoundID      string
	DealerScore  int
	DealerBust   bool
	Hands        []HandResult
	StartBalance int
	EndBalance   int
	NetChange    int
}

// Summary renders the result line shown after a round, for example
// "Hero 1: Win | Hero 2: Lose [200+0]".
func (r RoundResult) Summary() string {
	parts := make([]string, len(r.Hands))
	for i, h := range r.Hands {
		if len(r.Hands) > 1 {
			parts[i] = fmt.Sprintf("%s: %s", h.Label, h.Outcome)
		} else {
			parts[i] = h.Outcome.String()
		}
	}
	sign := ""
	if r.NetChange >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s [%d%s%d]", strings.Join(parts, " | "), r.StartBalance, sign, r.NetChange)
}

// Tone classifies the round for colouring: any win reads as a win, then any
// loss or bust, then a push.
func (r RoundResult) Tone() Outcome {
	tone := Pending
	for _, h := range r.Hands {
		switch h.Outcome {
		case Win:
			return Win
		case Lose, Bust:
			tone = Lose
		case Push:
			if tone == Pending {
				tone = Push
			}
		}
	}
	return tone
}

// heroLabel names a player hand the way the table does: "Hero" for a single
// hand, "Hero N" once the player has split.
func heroLabel(index, hands int) string {
	if hands > 1 {
		return fmt.Sprintf("Hero %d", index+1)
	}
	return "Hero"
}
