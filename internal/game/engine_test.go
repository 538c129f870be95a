package game

import (
	"errors"
	"testing"

	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStackedEngine returns an engine dealing exactly the given cards, first
// card first. Deal order is player, dealer, player, dealer hole card.
func newStackedEngine(t *testing.T, cards string, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithShoe(deck.NewStackedShoe(deck.MustParseCards(cards)...)),
		WithShuffleThreshold(0),
		WithClock(quartz.NewMock(t)),
		WithRoundIDs(func() string { return "round-1" }),
	}
	e, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return e
}

func TestEngine_PlayerStandsDealerMakes21(t *testing.T) {
	e := newStackedEngine(t, "10 6 7 5 10")

	require.NoError(t, e.PlaceBet(10))
	assert.Equal(t, Playing, e.State())
	assert.Equal(t, 190, e.Balance())
	assert.Equal(t, strategy.Stand, e.RecommendedAction())

	require.NoError(t, e.Stand())
	assert.Equal(t, Resolved, e.State())
	assert.Equal(t, 190, e.Balance())

	result, ok := e.LastResult()
	require.True(t, ok)
	assert.Equal(t, 21, result.DealerScore)
	require.Len(t, result.Hands, 1)
	assert.Equal(t, Lose, result.Hands[0].Outcome)
	assert.Equal(t, 0, result.Hands[0].Payout)
	assert.Equal(t, -10, result.NetChange)
	assert.Equal(t, "Lose [200-10]", result.Summary())
}

func TestEngine_RecommendedActions(t *testing.T) {
	tests := []struct {
		name  string
		cards string
		want  strategy.Action
	}{
		{"soft 19 stands", "A 5 8 10", strategy.Stand},
		{"eights split against a five", "8 5 8 10", strategy.Split},
		{"soft 17 doubles against a five", "A 5 6 10", strategy.Double},
		{"hard 11 doubles", "6 10 5 7", strategy.Double},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newStackedEngine(t, tt.cards)
			require.NoError(t, e.PlaceBet(10))
			assert.Equal(t, tt.want, e.RecommendedAction())
			assert.True(t, e.Eligibility().Allows(tt.want))
		})
	}
}

func TestEngine_RecommendedActionOutsidePlaying(t *testing.T) {
	e := newStackedEngine(t, "10 6 7 5 10")
	assert.Equal(t, strategy.None, e.RecommendedAction())
}

func TestEngine_BustKeepsStakeOnly(t *testing.T) {
	e := newStackedEngine(t, "10 5 6 9 10 3")

	require.NoError(t, e.PlaceBet(10))
	require.NoError(t, e.Hit())

	assert.Equal(t, Resolved, e.State())
	assert.Equal(t, 190, e.Balance())
	result, _ := e.LastResult()
	assert.Equal(t, Bust, result.Hands[0].Outcome)
	assert.Equal(t, 0, result.Hands[0].Payout)
	assert.Equal(t, 17, result.DealerScore, "dealer still plays out its hand")
}

func TestEngine_HitTo21AdvancesAutomatically(t *testing.T) {
	e := newStackedEngine(t, "5 10 6 8 10")

	require.NoError(t, e.PlaceBet(10))
	require.NoError(t, e.Hit())

	assert.Equal(t, Resolved, e.State())
	assert.Equal(t, 210, e.Balance())
}

func TestEngine_NaturalStandsAutomatically(t *testing.T) {
	e := newStackedEngine(t, "A 5 K 9 3")

	require.NoError(t, e.PlaceBet(10))

	assert.Equal(t, Resolved, e.State())
	result, _ := e.LastResult()
	assert.Equal(t, Win, result.Hands[0].Outcome)
	assert.Equal(t, 20, result.Hands[0].Payout, "a natural pays the same 2x as any win")
	assert.Equal(t, 210, e.Balance())
}

func TestEngine_DoubleDown(t *testing.T) {
	e := newStackedEngine(t, "6 5 5 10 10 9")

	require.NoError(t, e.PlaceBet(10))
	require.NoError(t, e.DoubleDown())

	assert.Equal(t, Resolved, e.State())
	result, _ := e.LastResult()
	assert.Equal(t, 20, result.Hands[0].Bet)
	assert.Equal(t, Win, result.Hands[0].Outcome)
	assert.Equal(t, 40, result.Hands[0].Payout)
	assert.True(t, result.DealerBust)
	assert.Equal(t, 220, e.Balance())
}

func TestEngine_DoubleDownEndsHandRegardlessOfScore(t *testing.T) {
	e := newStackedEngine(t, "2 10 3 7 2")

	require.NoError(t, e.PlaceBet(10))
	require.NoError(t, e.DoubleDown())

	assert.Equal(t, Resolved, e.State())
	result, _ := e.LastResult()
	assert.Equal(t, 7, result.Hands[0].Score)
	assert.Equal(t, Lose, result.Hands[0].Outcome)
	assert.Equal(t, 180, e.Balance())
}

func TestEngine_Split(t *testing.T) {
	e := newStackedEngine(t, "8 6 8 10 3 10 10 7")

	require.NoError(t, e.PlaceBet(10))
	require.NoError(t, e.Split())

	snap := e.Snapshot()
	assert.Equal(t, 180, snap.Balance)
	require.Len(t, snap.Hands, 2)
	assert.Equal(t, "Hero 1", snap.Hands[0].Label)
	assert.Equal(t, deck.MustParseCards("8 3"), snap.Hands[0].Cards)
	assert.Equal(t, deck.MustParseCards("8 10"), snap.Hands[1].Cards)
	assert.Equal(t, 10, snap.Hands[1].Bet)
	assert.Equal(t, 0, snap.ActiveHand, "split keeps the original hand active")
	assert.True(t, snap.Hands[0].Active)
	assert.Equal(t, "Hero 1 to act", snap.Message)

	require.NoError(t, e.Hit()) // 8 3 10 makes 21 and moves on
	assert.Equal(t, 1, e.Snapshot().ActiveHand)
	require.NoError(t, e.Stand())

	assert.Equal(t, Resolved, e.State())
	result, _ := e.LastResult()
	require.Len(t, result.Hands, 2)
	for _, h := range result.Hands {
		assert.Equal(t, Win, h.Outcome)
		assert.Equal(t, 20, h.Payout)
	}
	assert.Equal(t, 220, e.Balance())
	assert.Equal(t, "Hero 1: Win | Hero 2: Win [200+20]", result.Summary())
}

func TestEngine_Resplit(t *testing.T) {
	e := newStackedEngine(t, "8 6 8 10 8 3 5 10 10")

	require.NoError(t, e.PlaceBet(10))
	require.NoError(t, e.Split())
	require.True(t, e.Eligibility().Split, "a split hand dealt another pair can split again")
	require.NoError(t, e.Split())

	snap := e.Snapshot()
	require.Len(t, snap.Hands, 3)
	assert.Equal(t, 170, snap.Balance)
	assert.Equal(t, deck.MustParseCards("8 5"), snap.Hands[0].Cards)
	assert.Equal(t, deck.MustParseCards("8 3"), snap.Hands[1].Cards)
	assert.Equal(t, deck.MustParseCards("8 10"), snap.Hands[2].Cards)

	for range 3 {
		require.NoError(t, e.Stand())
	}
	assert.Equal(t, Resolved, e.State())
	assert.Equal(t, 230, e.Balance())
}

func TestEngine_ActionsNotAllowed(t *testing.T) {
	e := newStackedEngine(t, "10 6 7 5 2")
	require.NoError(t, e.PlaceBet(10))

	err := e.Split()
	assert.ErrorIs(t, err, ErrActionNotAllowed)

	require.NoError(t, e.Hit())
	err = e.DoubleDown()
	assert.ErrorIs(t, err, ErrActionNotAllowed, "double only on two cards")
	assert.Len(t, e.Snapshot().Hands[0].Cards, 3)
	assert.Equal(t, 190, e.Balance())
}

func TestEngine_DoubleNeedsBalance(t *testing.T) {
	e := newStackedEngine(t, "8 6 8 10", WithBalance(15))
	require.NoError(t, e.PlaceBet(10))

	el := e.Eligibility()
	assert.False(t, el.Double)
	assert.False(t, el.Split)
	assert.ErrorIs(t, e.DoubleDown(), ErrActionNotAllowed)
	assert.ErrorIs(t, e.Split(), ErrActionNotAllowed)
	assert.Equal(t, 5, e.Balance())
}

func TestEngine_ShortShoeChangesNothing(t *testing.T) {
	t.Run("deal", func(t *testing.T) {
		e := newStackedEngine(t, "10 6 7")

		err := e.PlaceBet(10)
		require.ErrorIs(t, err, deck.ErrEmptyShoe)
		assert.Equal(t, Betting, e.State())
		assert.Equal(t, 200, e.Balance())
		assert.Equal(t, 0, e.RunningCount())
		assert.Equal(t, 3, e.Shoe().Remaining())
		assert.Empty(t, e.Snapshot().Hands)
		_, ok := e.LastResult()
		assert.False(t, ok)
		assert.False(t, e.Busy())
	})

	t.Run("split", func(t *testing.T) {
		e := newStackedEngine(t, "8 6 8 10 3")
		require.NoError(t, e.PlaceBet(10))
		count := e.RunningCount()

		err := e.Split()
		require.ErrorIs(t, err, deck.ErrEmptyShoe)
		assert.Equal(t, Playing, e.State())
		assert.Equal(t, 190, e.Balance())
		assert.Equal(t, count, e.RunningCount())
		assert.Equal(t, 1, e.Shoe().Remaining())

		hands := e.Snapshot().Hands
		require.Len(t, hands, 1)
		assert.Equal(t, deck.MustParseCards("8 8"), hands[0].Cards)
		assert.Equal(t, 10, hands[0].Bet)
	})

	t.Run("double", func(t *testing.T) {
		e := newStackedEngine(t, "6 5 5 10")
		require.NoError(t, e.PlaceBet(10))

		err := e.DoubleDown()
		require.ErrorIs(t, err, deck.ErrEmptyShoe)
		assert.Equal(t, Playing, e.State())
		assert.Equal(t, 190, e.Balance())

		hand := e.Snapshot().Hands[0]
		assert.Equal(t, 10, hand.Bet)
		assert.False(t, hand.Doubled)
		assert.Len(t, hand.Cards, 2)
	})

	t.Run("hit", func(t *testing.T) {
		e := newStackedEngine(t, "10 5 2 9")
		require.NoError(t, e.PlaceBet(10))

		err := e.Hit()
		require.ErrorIs(t, err, deck.ErrEmptyShoe)
		assert.Equal(t, 190, e.Balance())
		assert.Len(t, e.Snapshot().Hands[0].Cards, 2)
	})
}

func TestEngine_WrongState(t *testing.T) {
	e := newStackedEngine(t, "10 6 7 5 10")

	assert.ErrorIs(t, e.Hit(), ErrWrongState)
	assert.ErrorIs(t, e.Stand(), ErrWrongState)
	assert.ErrorIs(t, e.Shortcut(), ErrWrongState)

	require.NoError(t, e.PlaceBet(10))
	assert.ErrorIs(t, e.PlaceBet(10), ErrWrongState)
}

func TestEngine_InvalidBets(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"zero", "0"},
		{"negative", "-5"},
		{"over balance", "201"},
		{"not a number", "abc"},
		{"fractional", "2.5"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newStackedEngine(t, "10 6 7 5 10")

			err := e.PlaceBetString(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidBet)
			var betErr *InvalidBetError
			assert.True(t, errors.As(err, &betErr))

			assert.Equal(t, Betting, e.State())
			assert.Equal(t, 200, e.Balance())
			assert.Equal(t, 5, e.Shoe().Remaining())
		})
	}
}

func TestEngine_PauseDealerGate(t *testing.T) {
	e := newStackedEngine(t, "10 6 7 5 10", WithPauseDealer(true))

	require.NoError(t, e.PlaceBet(10))
	assert.Equal(t, 0, e.RunningCount(), "hole card is not counted while face down")

	require.NoError(t, e.Stand())
	assert.Equal(t, DealerTurn, e.State())
	assert.True(t, e.AwaitingProceed())
	assert.True(t, e.Busy())
	assert.ErrorIs(t, e.Hit(), ErrBusy)
	assert.ErrorIs(t, e.PlaceBet(10), ErrBusy)

	snap := e.Snapshot()
	assert.True(t, snap.Dealer.HoleHidden)
	assert.Equal(t, "?", snap.Dealer.Score)
	assert.Len(t, snap.Dealer.Cards, 1)
	assert.True(t, snap.Eligible.Proceed)
	assert.False(t, snap.Eligible.Deal)

	require.NoError(t, e.Proceed()) // reveal
	assert.Equal(t, 1, e.RunningCount())
	assert.Equal(t, "Dealer reveals", e.Snapshot().Message)
	assert.Equal(t, "11", e.Snapshot().Dealer.Score)

	require.NoError(t, e.Proceed()) // hit
	assert.Equal(t, 0, e.RunningCount())
	assert.Equal(t, "Dealer chooses to Hit", e.Snapshot().Message)

	require.NoError(t, e.Proceed()) // stand
	assert.Equal(t, "Dealer chooses to Stand", e.Snapshot().Message)
	assert.Equal(t, DealerTurn, e.State())

	require.NoError(t, e.Proceed()) // settle
	assert.Equal(t, Resolved, e.State())
	assert.False(t, e.AwaitingProceed())
	assert.False(t, e.Busy())
	assert.Equal(t, "Lose [200-10]", e.Snapshot().Message)

	assert.ErrorIs(t, e.Proceed(), ErrActionNotAllowed)
}

func TestEngine_ShortcutProceedsAndPlays(t *testing.T) {
	e := newStackedEngine(t, "10 6 7 5 10", WithPauseDealer(true))
	require.NoError(t, e.PlaceBet(10))

	require.NoError(t, e.Shortcut()) // stand
	for e.AwaitingProceed() {
		require.NoError(t, e.Shortcut())
	}
	assert.Equal(t, Resolved, e.State())
}

func TestEngine_ReentrantCommandsAreRejected(t *testing.T) {
	var e *Engine
	var reentrant []error
	sub := SubscriberFunc(func(ev Event) {
		if _, ok := ev.(DealCompleteEvent); ok {
			reentrant = append(reentrant, e.Hit(), e.Stand(), e.PlaceBet(5))
		}
	})
	e = newStackedEngine(t, "10 6 7 5 10", WithSubscriber(sub))

	require.NoError(t, e.PlaceBet(10))
	require.Len(t, reentrant, 3)
	for _, err := range reentrant {
		assert.ErrorIs(t, err, ErrBusy)
	}
	assert.Len(t, e.Snapshot().Hands[0].Cards, 2)
	assert.Equal(t, Playing, e.State())
	assert.Equal(t, 190, e.Balance())
}

func TestEngine_NewValidation(t *testing.T) {
	_, err := New(WithDecks(1))
	assert.ErrorIs(t, err, ErrShoeTooSmall)

	_, err = New(WithDecks(0))
	assert.Error(t, err)

	_, err = New(WithShuffleThreshold(1))
	assert.Error(t, err)

	_, err = New(WithBalance(-1))
	assert.Error(t, err)

	e, err := New(WithDecks(6), WithSeed(7))
	require.NoError(t, err)
	assert.Equal(t, 312, e.Shoe().Remaining())
	assert.Equal(t, Betting, e.State())
	assert.Equal(t, DefaultBalance, e.Balance())
}

func TestEngine_EventTimestampsUseClock(t *testing.T) {
	mock := quartz.NewMock(t)
	var events []Event
	e := newStackedEngine(t, "10 6 7 5 10",
		WithClock(mock),
		WithSubscriber(SubscriberFunc(func(ev Event) { events = append(events, ev) })))

	require.NoError(t, e.PlaceBet(10))
	require.NotEmpty(t, events)
	for _, ev := range events {
		assert.True(t, ev.Timestamp().Equal(mock.Now()), "event %s", ev.EventType())
	}
}

// playOut plays the current round to completion following the advisor and
// falling back to Hit or Stand when the advice is not available.
func playOut(t *testing.T, e *Engine) {
	t.Helper()
	for e.State() == Playing {
		action := e.RecommendedAction()
		el := e.Eligibility()
		if !el.Allows(action) {
			action = strategy.Stand
			if el.Hit {
				action = strategy.Hit
			}
		}
		require.NoError(t, e.Execute(action))
	}
	for e.AwaitingProceed() {
		require.NoError(t, e.Proceed())
	}
	require.Equal(t, Resolved, e.State())
}

func TestEngine_SettlementInvariants(t *testing.T) {
	var counter runningTally
	e, err := New(
		WithSeed(42),
		WithDecks(2),
		WithBalance(1_000_000),
		WithSubscriber(&counter),
	)
	require.NoError(t, err)

	for round := range 300 {
		before := e.Balance()
		require.NoError(t, e.PlaceBet(10), "round %d", round)
		playOut(t, e)

		result, ok := e.LastResult()
		require.True(t, ok)
		assert.Equal(t, before, result.StartBalance)

		staked, paid := 0, 0
		for _, h := range result.Hands {
			staked += h.Bet
			paid += h.Payout
			switch h.Outcome {
			case Bust:
				assert.Greater(t, h.Score, 21)
				assert.Equal(t, 0, h.Payout)
			case Win:
				assert.Equal(t, 2*h.Bet, h.Payout)
			case Lose:
				assert.Equal(t, 0, h.Payout)
			case Push:
				assert.Equal(t, h.Bet, h.Payout)
			default:
				t.Fatalf("round %d: hand %d left %s", round, h.Index, h.Outcome)
			}
		}
		assert.Equal(t, before-staked+paid, e.Balance(), "round %d", round)
		assert.Equal(t, e.Balance()-before, result.NetChange)
		assert.Equal(t, counter.running, e.RunningCount(), "round %d", round)
	}
	assert.Greater(t, counter.shuffles, 2, "the shoe should reshuffle several times")
}

// runningTally recomputes the Hi-Lo count from visible cards in the event stream.
type runningTally struct {
	running  int
	shuffles int
}

func (r *runningTally) OnEvent(ev Event) {
	switch ev := ev.(type) {
	case ShuffleEvent:
		r.running = 0
		r.shuffles++
	case CardDealtEvent:
		if !ev.FaceDown {
			r.running += hiLo(ev.Card)
		}
	case HoleCardRevealedEvent:
		r.running += hiLo(ev.Card)
	}
}

func hiLo(c deck.Card) int {
	switch {
	case c.Rank >= deck.Two && c.Rank <= deck.Six:
		return 1
	case c.Rank == deck.Ace || c.Rank.IsTenValue():
		return -1
	}
	return 0
}

func TestEngine_ReshuffleResetsCount(t *testing.T) {
	var countsAtShuffle []int
	var remainingAtShuffle []int
	var e *Engine
	sub := SubscriberFunc(func(ev Event) {
		if _, ok := ev.(ShuffleEvent); ok && e != nil {
			countsAtShuffle = append(countsAtShuffle, e.RunningCount())
			remainingAtShuffle = append(remainingAtShuffle, e.Shoe().Remaining())
		}
	})
	e, err := New(WithSeed(3), WithDecks(1), WithShuffleThreshold(0.5), WithBalance(10_000), WithSubscriber(sub))
	require.NoError(t, err)

	for range 40 {
		require.NoError(t, e.PlaceBet(1))
		playOut(t, e)
		assert.GreaterOrEqual(t, e.Shoe().Remaining(), 0)
	}

	require.NotEmpty(t, countsAtShuffle)
	for i := range countsAtShuffle {
		assert.Equal(t, 0, countsAtShuffle[i])
		assert.Equal(t, 52, remainingAtShuffle[i])
	}
}

func TestEngine_SnapshotAndDump(t *testing.T) {
	e := newStackedEngine(t, "10 6 7 5 10")
	require.NoError(t, e.PlaceBet(10))

	snap := e.Snapshot()
	assert.Equal(t, "round-1", snap.RoundID)
	assert.Equal(t, 1, snap.Round)
	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, "Hero to act", snap.Message)
	assert.Equal(t, "17", snap.Hands[0].Score)
	assert.Equal(t, 80, snap.Penetration)
	assert.Equal(t, 1, snap.CardsRemaining)
	assert.Equal(t, strategy.Stand, snap.Recommended)
	assert.Equal(t, Eligibility{Hit: true, Stand: true, Double: true}, snap.Eligible)
	assert.Contains(t, snap.Dump(), "round-1")

	require.NoError(t, e.Stand())
	snap = e.Snapshot()
	assert.False(t, snap.Dealer.HoleHidden)
	assert.Len(t, snap.Dealer.Cards, 3)
	assert.Equal(t, "21", snap.Dealer.Score)
	require.NotNil(t, snap.LastResult)
	assert.Equal(t, Lose, snap.LastResult.Tone())
	assert.True(t, snap.Eligible.Deal)
}
