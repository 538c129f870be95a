package game

import (
	"math"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/scoring"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/sanity-io/litter"
)

// Eligibility says which commands the engine would accept right now. The
// flags come from the same guards the commands check.
type Eligibility struct {
	Deal    bool
	Hit     bool
	Stand   bool
	Double  bool
	Split   bool
	Proceed bool
}

// Allows reports whether the given player action is currently eligible.
func (el Eligibility) Allows(action strategy.Action) bool {
	switch action {
	case strategy.Hit:
		return el.Hit
	case strategy.Stand:
		return el.Stand
	case strategy.Double:
		return el.Double
	case strategy.Split:
		return el.Split
	default:
		return false
	}
}

// Eligibility computes the current command eligibility.
func (e *Engine) Eligibility() Eligibility {
	var el Eligibility
	el.Proceed = e.awaiting
	if e.Busy() {
		return el
	}

	switch e.state {
	case Betting, Resolved:
		el.Deal = e.balance > 0
	case Playing:
		hand := e.hands[e.active]
		el.Hit = scoring.Best(hand.Cards) < scoring.Blackjack
		el.Stand = true
		el.Double = e.canDouble(hand) == nil
		el.Split = e.canSplit(hand) == nil
	}
	return el
}

// DealerView is the dealer's hand as the player may see it.
type DealerView struct {
	Cards      []deck.Card // the hole card is omitted while hidden
	HoleHidden bool
	Score      string // "?" while the hole card is hidden
}

// HandView is one player hand for display.
type HandView struct {
	Label   string
	Cards   []deck.Card
	Bet     int
	Score   string
	Soft    bool // an ace still counts as 11
	Active  bool
	Doubled bool
	Outcome Outcome
}

// Snapshot is a copy of everything the presentation layer shows.
type Snapshot struct {
	RoundID         string
	Round           int
	State           RoundState
	Balance         int
	RunningCount    int
	TrueCount       float64
	RecommendedBet  int
	Penetration     int // percent of the shoe dealt
	CardsRemaining  int
	Dealer          DealerView
	Hands           []HandView
	ActiveHand      int
	Busy            bool
	AwaitingProceed bool
	Recommended     strategy.Action
	Eligible        Eligibility
	Message         string
	LastResult      *RoundResult
}

// Snapshot copies the engine's visible state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		RoundID:         e.roundID,
		Round:           e.round,
		State:           e.state,
		Balance:         e.balance,
		RunningCount:    e.counter.Running(),
		TrueCount:       e.TrueCount(),
		RecommendedBet:  e.RecommendedBet(),
		Penetration:     int(math.Round(e.shoe.Penetration() * 100)),
		CardsRemaining:  e.shoe.Remaining(),
		ActiveHand:      e.active,
		Busy:            e.Busy(),
		AwaitingProceed: e.awaiting,
		Recommended:     e.RecommendedAction(),
		Eligible:        e.Eligibility(),
		Message:         e.message,
	}

	if e.state == Playing {
		s.Message = e.toActMessage()
	}
	if e.result != nil {
		r := *e.result
		r.Hands = append([]HandResult(nil), e.result.Hands...)
		s.LastResult = &r
	}

	hidden := len(e.dealer) >= 2 && !e.holeRevealed
	s.Dealer = DealerView{HoleHidden: hidden, Score: "?"}
	if hidden {
		s.Dealer.Cards = []deck.Card{e.dealer[0]}
	} else {
		s.Dealer.Cards = append([]deck.Card(nil), e.dealer...)
		if len(e.dealer) > 0 {
			s.Dealer.Score = scoring.Display(e.dealer)
		}
	}

	s.Hands = make([]HandView, len(e.hands))
	for i, h := range e.hands {
		s.Hands[i] = HandView{
			Label:   e.heroLabel(i),
			Cards:   append([]deck.Card(nil), h.Cards...),
			Bet:     h.Bet,
			Score:   scoring.Display(h.Cards),
			Soft:    scoring.IsSoft(h.Cards),
			Active:  e.state == Playing && i == e.active,
			Doubled: h.Doubled,
			Outcome: h.Outcome,
		}
	}
	return s
}

// Dump renders the snapshot as Go-like literal text for debug logs.
func (s Snapshot) Dump() string {
	return litter.Sdump(s)
}
