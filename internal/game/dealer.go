package game

import (
	"fmt"

	"github.com/lox/blackjack/internal/scoring"
)

// DealerStandsOn is the total at which the dealer stops drawing, soft or hard.
const DealerStandsOn = 17

type dealerPhase int

const (
	phaseReveal dealerPhase = iota
	phaseDraw
	phaseAnnounce
	phaseSettle
)

// startDealerTurn hands play to the dealer. Without a pacing gate the whole
// turn, settlement included, runs before returning.
func (e *Engine) startDealerTurn() error {
	e.setState(DealerTurn)
	e.phase = phaseReveal
	if e.pauseDealer {
		e.awaiting = true
		return nil
	}
	for {
		done, err := e.dealerStep()
		if err != nil || done {
			return err
		}
	}
}

// Proceed runs the next paused dealer step: the reveal, one draw, the final
// stand or bust, or settlement.
func (e *Engine) Proceed() error {
	if e.busy {
		return fmt.Errorf("proceed: %w", ErrBusy)
	}
	if !e.awaiting {
		return notAllowed("proceed", "the dealer is not waiting")
	}

	e.awaiting = false
	e.busy = true
	defer func() { e.busy = false }()

	done, err := e.dealerStep()
	if err != nil {
		return err
	}
	e.awaiting = !done
	return nil
}

// dealerStep performs one step of the dealer turn and reports whether the round is settled.
func (e *Engine) dealerStep() (bool, error) {
	switch e.phase {
	case phaseReveal:
		hole := e.dealer[1]
		e.holeRevealed = true
		e.counter.Update(hole)
		score := scoring.Best(e.dealer)
		e.message = "Dealer reveals"
		e.logger.Debug("Dealer reveals", "round", e.roundID, "card", hole, "score", score)
		e.bus.Publish(HoleCardRevealedEvent{stamp: e.now(), RoundID: e.roundID, Card: hole, Score: score})
		e.phase = e.nextDrawPhase()

	case phaseDraw:
		card, err := e.draw(true)
		if err != nil {
			return false, fmt.Errorf("dealer draw: %w", err)
		}
		e.dealer = append(e.dealer, card)
		score := scoring.Best(e.dealer)
		e.message = "Dealer chooses to Hit"
		e.logger.Debug("Dealer hits", "round", e.roundID, "card", card, "score", score)
		e.bus.Publish(CardDealtEvent{stamp: e.now(), RoundID: e.roundID, To: ToDealer, Card: card})
		e.bus.Publish(DealerActionEvent{stamp: e.now(), RoundID: e.roundID, Move: DealerHits, Card: card, Score: score})
		e.phase = e.nextDrawPhase()

	case phaseAnnounce:
		score := scoring.Best(e.dealer)
		move := DealerStands
		e.message = "Dealer chooses to Stand"
		if score > scoring.Blackjack {
			move = DealerBusts
			e.message = "Dealer busts!"
		}
		e.logger.Debug("Dealer done", "round", e.roundID, "move", move, "score", score)
		e.bus.Publish(DealerActionEvent{stamp: e.now(), RoundID: e.roundID, Move: move, Score: score})
		e.phase = phaseSettle

	case phaseSettle:
		e.settle()
		return true, nil
	}
	return false, nil
}

func (e *Engine) nextDrawPhase() dealerPhase {
	if scoring.Best(e.dealer) < DealerStandsOn {
		return phaseDraw
	}
	return phaseAnnounce
}

// settle compares every player hand with the dealer and pays winners 2x and
// pushes 1x their stake. Stakes on losing and busted hands are already gone.
func (e *Engine) settle() {
	dealerScore := scoring.Best(e.dealer)
	dealerBust := dealerScore > scoring.Blackjack

	result := RoundResult{
		RoundID:      e.roundID,
		DealerScore:  dealerScore,
		DealerBust:   dealerBust,
		Hands:        make([]HandResult, 0, len(e.hands)),
		StartBalance: e.startBalance,
	}

	for i, hand := range e.hands {
		score := scoring.Best(hand.Cards)
		outcome, payout := settleHand(score, dealerScore, hand.Bet)
		hand.Outcome = outcome
		hand.Payout = payout
		e.balance += payout

		hr := HandResult{
			Index:   i,
			Label:   e.heroLabel(i),
			Score:   score,
			Bet:     hand.Bet,
			Outcome: outcome,
			Payout:  payout,
		}
		result.Hands = append(result.Hands, hr)
		e.bus.Publish(HandSettledEvent{
			stamp:       e.now(),
			RoundID:     e.roundID,
			Result:      hr,
			HandCount:   len(e.hands),
			DealerScore: dealerScore,
			DealerBust:  dealerBust,
		})
	}

	result.EndBalance = e.balance
	result.NetChange = e.balance - e.startBalance
	e.result = &result
	e.message = result.Summary()

	e.setState(Resolved)
	e.logger.Info("Round settled", "round", e.roundID, "result", e.message,
		"dealer", dealerScore, "balance", e.balance, "net", result.NetChange)
	e.bus.Publish(RoundEndEvent{stamp: e.now(), Result: result})
}

// settleHand returns the outcome and payout for one hand.
func settleHand(player, dealer, bet int) (Outcome, int) {
	switch {
	case player > scoring.Blackjack:
		return Bust, 0
	case dealer > scoring.Blackjack:
		return Win, 2 * bet
	case player > dealer:
		return Win, 2 * bet
	case player < dealer:
		return Lose, 0
	default:
		return Push, bet
	}
}
