package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(s string) deck.Card {
	c, err := deck.ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

func TestNarrate(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "deal",
			event: DealCompleteEvent{PlayerCards: deck.MustParseCards("A 8"), DealerUp: card("K")},
			want:  "You are dealt an Ace and an 8.",
		},
		{
			name:  "hit",
			event: PlayerActionEvent{Action: strategy.Hit, Card: card("Q"), Score: 18},
			want:  "You are dealt a Queen.",
		},
		{
			name:  "hit and bust",
			event: PlayerActionEvent{Action: strategy.Hit, Card: card("J"), Score: 26, Bust: true},
			want:  "You are dealt a Jack. You bust because the score is 26, which is greater than 21.",
		},
		{
			name:  "stand",
			event: PlayerActionEvent{Action: strategy.Stand, Score: 17},
			want:  "You stand with a score of 17.",
		},
		{
			name:  "double",
			event: PlayerActionEvent{Action: strategy.Double, Card: card("9"), Score: 20},
			want:  "You double down with a score of 20.",
		},
		{
			name:  "split",
			event: PlayerActionEvent{Action: strategy.Split, HandIndex: 0, Score: 11, NewHandIndex: 1, NewHandScore: 18},
			want:  "You split with a score of 11 for hand 1 and 18 for hand 2.",
		},
		{
			name:  "reveal",
			event: HoleCardRevealedEvent{Card: card("5"), Score: 11},
			want:  "The dealer reveals a 5.",
		},
		{
			name:  "dealer hits",
			event: DealerActionEvent{Move: DealerHits, Card: card("A"), Score: 17},
			want:  "The dealer hits and is dealt an Ace.",
		},
		{
			name:  "dealer stands",
			event: DealerActionEvent{Move: DealerStands, Score: 19},
			want:  "The dealer stands with a score of 19.",
		},
		{
			name:  "dealer busts",
			event: DealerActionEvent{Move: DealerBusts, Score: 24},
			want:  "Dealer busts because the score is 24, which is greater than 21.",
		},
		{
			name:  "win on dealer bust",
			event: HandSettledEvent{Result: HandResult{Outcome: Win, Score: 18}, DealerScore: 24, DealerBust: true},
			want:  "You win because the dealer busts.",
		},
		{
			name:  "win on score",
			event: HandSettledEvent{Result: HandResult{Outcome: Win, Score: 20}, DealerScore: 18},
			want:  "You win because you have a score of 20 and the dealer has a score of 18.",
		},
		{
			name:  "lose",
			event: HandSettledEvent{Result: HandResult{Outcome: Lose, Score: 17}, DealerScore: 21},
			want:  "You lose because you have a score of 17 and the dealer has a score of 21.",
		},
		{
			name:  "push",
			event: HandSettledEvent{Result: HandResult{Outcome: Push, Score: 19}, DealerScore: 19},
			want:  "It's a push with a score of 19.",
		},
		{
			name:  "split hand busts",
			event: HandSettledEvent{Result: HandResult{Outcome: Bust, Label: "Hero 2", Score: 23}, DealerScore: 19},
			want:  "Hero 2 busts because the score is 23, which is greater than 21.",
		},
		{
			name:  "shuffle",
			event: ShuffleEvent{Cards: 104},
			want:  "Deck shuffled.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Narrate(tt.event)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNarrate_Silent(t *testing.T) {
	for _, ev := range []Event{
		RoundStartEvent{},
		CardDealtEvent{Card: card("A")},
		StateChangeEvent{From: Betting, To: Playing},
		RoundEndEvent{},
	} {
		_, ok := Narrate(ev)
		assert.False(t, ok, "%s", ev.EventType())
	}
}

func TestNarrator_DropsWhenFull(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	n := NewNarrator(2, logger)

	for range 5 {
		n.OnEvent(ShuffleEvent{})
	}
	n.OnEvent(RoundStartEvent{}) // not narrated, not dropped

	assert.Equal(t, int64(3), n.Dropped())
	assert.Len(t, n.Lines(), 2)
	assert.Equal(t, "Deck shuffled.", <-n.Lines())
}

func TestNarrator_FollowsARound(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	n := NewNarrator(0, logger)
	e := newStackedEngine(t, "10 6 7 5 10", WithSubscriber(n))

	require.NoError(t, e.PlaceBet(10))
	require.NoError(t, e.Stand())

	var lines []string
	for len(n.Lines()) > 0 {
		lines = append(lines, <-n.Lines())
	}
	assert.Equal(t, []string{
		"Deck shuffled.",
		"You are dealt a 10 and a 7.",
		"You stand with a score of 17.",
		"The dealer reveals a 5.",
		"The dealer hits and is dealt a 10.",
		"The dealer stands with a score of 21.",
		"You lose because you have a score of 17 and the dealer has a score of 21.",
	}, lines)
	assert.Zero(t, n.Dropped())
}
