package game

import (
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/strategy"
)

// DefaultNarrationBuffer is how many sentences a Narrator holds before dropping.
const DefaultNarrationBuffer = 256

// Narrate returns the sentence read out for an event. Events that are not
// narrated return false.
func Narrate(event Event) (string, bool) {
	switch ev := event.(type) {
	case ShuffleEvent:
		return "Deck shuffled.", true

	case DealCompleteEvent:
		if len(ev.PlayerCards) < 2 {
			return "", false
		}
		return fmt.Sprintf("You are dealt %s and %s.",
			ev.PlayerCards[0].Narrative(), ev.PlayerCards[1].Narrative()), true

	case PlayerActionEvent:
		return narratePlayerAction(ev)

	case HoleCardRevealedEvent:
		return fmt.Sprintf("The dealer reveals %s.", ev.Card.Narrative()), true

	case DealerActionEvent:
		switch ev.Move {
		case DealerHits:
			return fmt.Sprintf("The dealer hits and is dealt %s.", ev.Card.Narrative()), true
		case DealerBusts:
			return fmt.Sprintf("Dealer busts because the score is %d, which is greater than 21.", ev.Score), true
		default:
			return fmt.Sprintf("The dealer stands with a score of %d.", ev.Score), true
		}

	case HandSettledEvent:
		return narrateSettlement(ev), true
	}
	return "", false
}

func narratePlayerAction(ev PlayerActionEvent) (string, bool) {
	var line string
	switch ev.Action {
	case strategy.Hit:
		line = fmt.Sprintf("You are dealt %s.", ev.Card.Narrative())
	case strategy.Stand:
		line = fmt.Sprintf("You stand with a score of %d.", ev.Score)
	case strategy.Double:
		line = fmt.Sprintf("You double down with a score of %d.", ev.Score)
	case strategy.Split:
		line = fmt.Sprintf("You split with a score of %d for hand %d and %d for hand %d.",
			ev.Score, ev.HandIndex+1, ev.NewHandScore, ev.NewHandIndex+1)
	default:
		return "", false
	}
	if ev.Bust {
		line += fmt.Sprintf(" You bust because the score is %d, which is greater than 21.", ev.Score)
	}
	return line, true
}

func narrateSettlement(ev HandSettledEvent) string {
	r := ev.Result
	switch r.Outcome {
	case Bust:
		return fmt.Sprintf("%s busts because the score is %d, which is greater than 21.", r.Label, r.Score)
	case Win:
		if ev.DealerBust {
			return "You win because the dealer busts."
		}
		return fmt.Sprintf("You win because you have a score of %d and the dealer has a score of %d.", r.Score, ev.DealerScore)
	case Lose:
		return fmt.Sprintf("You lose because you have a score of %d and the dealer has a score of %d.", r.Score, ev.DealerScore)
	default:
		return fmt.Sprintf("It's a push with a score of %d.", r.Score)
	}
}

// Narrator turns engine events into sentences and queues them for a reader
// that consumes them at its own pace. Publishing never blocks: when the reader
// falls a full buffer behind, new sentences are dropped and counted.
type Narrator struct {
	lines   chan string
	dropped atomic.Int64
	logger  *log.Logger
}

// NewNarrator creates a narrator holding up to buffer undelivered sentences.
func NewNarrator(buffer int, logger *log.Logger) *Narrator {
	if buffer <= 0 {
		buffer = DefaultNarrationBuffer
	}
	return &Narrator{
		lines:  make(chan string, buffer),
		logger: logger.WithPrefix("narrator"),
	}
}

// OnEvent implements EventSubscriber.
func (n *Narrator) OnEvent(event Event) {
	line, ok := Narrate(event)
	if !ok {
		return
	}
	select {
	case n.lines <- line:
	default:
		n.dropped.Add(1)
		n.logger.Warn("Narration buffer full, dropping line", "line", line)
	}
}

// Lines returns the channel sentences are delivered on.
func (n *Narrator) Lines() <-chan string {
	return n.lines
}

// Dropped returns how many sentences were discarded because the buffer was full.
func (n *Narrator) Dropped() int64 {
	return n.dropped.Load()
}
