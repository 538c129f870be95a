package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/scoring"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/sanity-io/litter"
)

type AdviseCmd struct {
	Hand    string  `required:"" help:"Player cards, e.g. \"As 7d\""`
	Dealer  string  `required:"" help:"Dealer up card, e.g. 9h"`
	TC      float64 `name:"tc" help:"True count" default:"0"`
	Balance int     `help:"Balance left after the bet" default:"1000"`
	Bet     int     `help:"Current bet" default:"10"`
	Play    string  `help:"Grade your own decision (hit, stand, double, split or h, s, d, p)"`
	Dump    bool    `help:"Print the full situation the advisor saw"`
}

func (c *AdviseCmd) Run() error {
	return c.run(os.Stdout)
}

func (c *AdviseCmd) run(w io.Writer) error {
	hand, err := deck.ParseCards(c.Hand)
	if err != nil {
		return fmt.Errorf("hand: %w", err)
	}
	if len(hand) == 0 {
		return fmt.Errorf("hand: no cards given")
	}
	up, err := deck.ParseCard(c.Dealer)
	if err != nil {
		return fmt.Errorf("dealer: %w", err)
	}

	var played strategy.Action
	if c.Play != "" {
		if played, err = strategy.ParseAction(c.Play); err != nil {
			return fmt.Errorf("play: %w", err)
		}
	}

	situation := strategy.Situation{
		Hand:       hand,
		DealerUp:   up,
		TrueCount:  c.TC,
		Balance:    c.Balance,
		CurrentBet: c.Bet,
	}
	action := strategy.Recommend(situation)

	if c.Dump {
		fmt.Fprintln(w, litter.Sdump(situation))
	}
	fmt.Fprintf(w, "%s (%s) vs %s: %s\n", c.Hand, scoring.Display(hand), up, action)
	if played != strategy.None {
		if played == action {
			fmt.Fprintf(w, "%s is correct\n", played)
		} else {
			fmt.Fprintf(w, "%s is wrong, the advisor plays %s\n", played, action)
		}
	}
	fmt.Fprintf(w, "Recommended bet at true count %.2f: %d\n", c.TC, counting.RecommendedBet(c.TC))
	return nil
}
