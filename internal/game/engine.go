package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/scoring"
	"github.com/lox/blackjack/internal/strategy"
)

// Engine runs rounds of blackjack for one player against the dealer. It owns
// the shoe, the running count, the bankroll and every hand in play.
//
// An Engine is not safe for concurrent use. Commands run to completion before
// returning; a command issued while another is still running (for example
// from inside an event subscriber) or while the dealer waits for Proceed is
// rejected with ErrBusy and changes nothing.
type Engine struct {
	shoe        *deck.Shoe
	counter     counting.Counter
	ramp        counting.BetRamp
	threshold   float64
	pauseDealer bool
	logger      *log.Logger
	clock       quartz.Clock
	bus         *SimpleEventBus
	newID       func() string

	state        RoundState
	round        int
	roundID      string
	balance      int
	startBalance int
	currentBet   int
	dealer       []deck.Card
	holeRevealed bool
	hands        []*PlayerHand
	active       int
	busy         bool
	awaiting     bool
	phase        dealerPhase
	message      string
	result       *RoundResult
}

// New creates an engine in the Betting state with a freshly shuffled shoe.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.complete()

	if cfg.balance < 0 {
		return nil, fmt.Errorf("starting balance must not be negative, got %d", cfg.balance)
	}
	if cfg.threshold < 0 || cfg.threshold >= 1 {
		return nil, fmt.Errorf("shuffle threshold must be in [0, 1), got %v", cfg.threshold)
	}

	shoe := cfg.shoe
	if shoe == nil {
		if cfg.decks < 1 {
			return nil, fmt.Errorf("deck count must be at least 1, got %d", cfg.decks)
		}
		reserve := float64(cfg.decks*deck.DeckSize) * cfg.threshold
		if reserve < MinReserveCards {
			return nil, fmt.Errorf("%w: %d decks at threshold %v keep %.1f cards, need %d",
				ErrShoeTooSmall, cfg.decks, cfg.threshold, reserve, MinReserveCards)
		}
		shoe = deck.NewShoe(cfg.rng, cfg.decks, cfg.numbersOnly)
	}

	e := &Engine{
		shoe:        shoe,
		ramp:        cfg.ramp,
		threshold:   cfg.threshold,
		pauseDealer: cfg.pauseDealer,
		logger:      cfg.logger.WithPrefix("engine"),
		clock:       cfg.clock,
		bus:         NewEventBus(),
		newID:       cfg.newID,
		state:       Betting,
		balance:     cfg.balance,
	}
	for _, sub := range cfg.subscribers {
		e.bus.Subscribe(sub)
	}

	e.logger.Info("Engine ready",
		"decks", shoe.Decks(),
		"cards", shoe.Capacity(),
		"numbersOnly", shoe.NumbersOnly(),
		"threshold", e.threshold,
		"balance", e.balance)
	e.bus.Publish(ShuffleEvent{stamp: e.now(), Cards: shoe.Remaining()})
	return e, nil
}

// Subscribe registers a subscriber for engine events.
func (e *Engine) Subscribe(sub EventSubscriber) {
	e.bus.Subscribe(sub)
}

// Unsubscribe removes a subscriber.
func (e *Engine) Unsubscribe(sub EventSubscriber) {
	e.bus.Unsubscribe(sub)
}

// State returns the current round state.
func (e *Engine) State() RoundState { return e.state }

// Balance returns the bankroll not currently at stake.
func (e *Engine) Balance() int { return e.balance }

// RunningCount returns the Hi-Lo running count of every visible card since the last shuffle.
func (e *Engine) RunningCount() int { return e.counter.Running() }

// TrueCount returns the running count per deck remaining, rounded to two decimals.
func (e *Engine) TrueCount() float64 { return e.counter.True(e.shoe.Remaining()) }

// RecommendedBet returns the ramp bet for the current true count. It is not
// clamped to the balance.
func (e *Engine) RecommendedBet() int { return e.ramp.Bet(e.TrueCount()) }

// Busy reports whether commands are currently being ignored.
func (e *Engine) Busy() bool { return e.busy || e.awaiting }

// AwaitingProceed reports whether the dealer is paused until Proceed is called.
func (e *Engine) AwaitingProceed() bool { return e.awaiting }

// Shoe exposes the shoe for inspection. Callers must not draw from it.
func (e *Engine) Shoe() *deck.Shoe { return e.shoe }

// LastResult returns the result of the most recently settled round, if any.
func (e *Engine) LastResult() (RoundResult, bool) {
	if e.result == nil {
		return RoundResult{}, false
	}
	return *e.result, true
}

// RecommendedAction returns the advisor's action for the active hand, or
// strategy.None outside the Playing state.
func (e *Engine) RecommendedAction() strategy.Action {
	if e.state != Playing || len(e.dealer) == 0 {
		return strategy.None
	}
	return strategy.Recommend(strategy.Situation{
		Hand:       e.hands[e.active].Cards,
		DealerUp:   e.dealer[0],
		TrueCount:  e.TrueCount(),
		Balance:    e.balance,
		CurrentBet: e.currentBet,
	})
}

// PlaceBetString parses a bet typed by the player and places it.
func (e *Engine) PlaceBetString(input string) error {
	input = strings.TrimSpace(input)
	amount, err := strconv.Atoi(input)
	if err != nil {
		return &InvalidBetError{Input: input, Balance: e.balance, Reason: "not a whole number"}
	}
	return e.PlaceBet(amount)
}

// PlaceBet starts a round: it reshuffles if the shoe is below the threshold,
// takes the stake and deals two cards each, the dealer's second face down.
// A natural 21 stands automatically.
func (e *Engine) PlaceBet(amount int) error {
	if e.Busy() {
		return fmt.Errorf("bet: %w", ErrBusy)
	}
	if e.state != Betting && e.state != Resolved {
		return fmt.Errorf("bet during %s: %w", e.state, ErrWrongState)
	}
	if amount <= 0 {
		return &InvalidBetError{Amount: amount, Balance: e.balance, Reason: "must be positive"}
	}
	if amount > e.balance {
		return &InvalidBetError{Amount: amount, Balance: e.balance, Reason: "exceeds balance"}
	}

	e.busy = true
	defer func() { e.busy = false }()

	if e.shoe.NeedsReshuffle(e.threshold) {
		e.reshuffle()
	}
	if err := e.ensureCards("deal", 4); err != nil {
		return err
	}

	e.startBalance = e.balance
	e.message = ""
	e.round++
	e.roundID = e.newID()
	e.balance -= amount
	e.currentBet = amount
	e.hands = []*PlayerHand{{Bet: amount}}
	e.dealer = nil
	e.holeRevealed = false
	e.active = 0
	e.result = nil

	e.logger.Info("Round started", "round", e.roundID, "bet", amount, "balance", e.balance,
		"runningCount", e.counter.Running(), "trueCount", e.TrueCount())
	e.bus.Publish(RoundStartEvent{stamp: e.now(), RoundID: e.roundID, Round: e.round, Bet: amount, Balance: e.balance})

	hand := e.hands[0]
	for i, face := range []struct {
		to       Recipient
		faceDown bool
	}{{ToPlayer, false}, {ToDealer, false}, {ToPlayer, false}, {ToDealer, true}} {
		card, err := e.draw(!face.faceDown)
		if err != nil {
			return fmt.Errorf("initial deal card %d: %w", i+1, err)
		}
		if face.to == ToPlayer {
			hand.Cards = append(hand.Cards, card)
		} else {
			e.dealer = append(e.dealer, card)
		}
		e.bus.Publish(CardDealtEvent{stamp: e.now(), RoundID: e.roundID, To: face.to, Card: card, FaceDown: face.faceDown})
	}

	e.setState(Playing)
	natural := scoring.IsNatural(hand.Cards)
	e.bus.Publish(DealCompleteEvent{
		stamp:       e.now(),
		RoundID:     e.roundID,
		PlayerCards: append([]deck.Card(nil), hand.Cards...),
		DealerUp:    e.dealer[0],
		Score:       scoring.Best(hand.Cards),
		Natural:     natural,
	})

	if natural {
		e.logger.Debug("Natural blackjack, standing", "round", e.roundID)
		return e.stand()
	}
	return nil
}

// Hit draws a card to the active hand. Reaching 21 or busting ends the hand.
func (e *Engine) Hit() error {
	hand, err := e.playerTurn("hit")
	if err != nil {
		return err
	}
	if scoring.Best(hand.Cards) >= scoring.Blackjack {
		return notAllowed("hit", "hand already at 21 or more")
	}

	e.busy = true
	defer func() { e.busy = false }()

	card, err := e.draw(true)
	if err != nil {
		return fmt.Errorf("hit: %w", err)
	}
	hand.Cards = append(hand.Cards, card)
	score := scoring.Best(hand.Cards)

	e.logger.Debug("Player hits", "round", e.roundID, "hand", e.active, "card", card, "score", score)
	e.bus.Publish(CardDealtEvent{stamp: e.now(), RoundID: e.roundID, To: ToPlayer, HandIndex: e.active, Card: card})
	e.bus.Publish(PlayerActionEvent{
		stamp:     e.now(),
		RoundID:   e.roundID,
		Action:    strategy.Hit,
		HandIndex: e.active,
		HandCount: len(e.hands),
		Card:      card,
		Score:     score,
		Bust:      scoring.IsBust(hand.Cards),
		Bet:       hand.Bet,
	})

	if score >= scoring.Blackjack {
		return e.advance()
	}
	return nil
}

// Stand ends the active hand.
func (e *Engine) Stand() error {
	if _, err := e.playerTurn("stand"); err != nil {
		return err
	}

	e.busy = true
	defer func() { e.busy = false }()
	return e.stand()
}

func (e *Engine) stand() error {
	hand := e.hands[e.active]
	score := scoring.Best(hand.Cards)

	e.logger.Debug("Player stands", "round", e.roundID, "hand", e.active, "score", score)
	e.bus.Publish(PlayerActionEvent{
		stamp:     e.now(),
		RoundID:   e.roundID,
		Action:    strategy.Stand,
		HandIndex: e.active,
		HandCount: len(e.hands),
		Score:     score,
		Bet:       hand.Bet,
	})
	return e.advance()
}

// DoubleDown doubles the active hand's stake, draws exactly one card and ends the hand.
func (e *Engine) DoubleDown() error {
	hand, err := e.playerTurn("double")
	if err != nil {
		return err
	}
	if err := e.canDouble(hand); err != nil {
		return err
	}
	if err := e.ensureCards("double", 1); err != nil {
		return err
	}

	e.busy = true
	defer func() { e.busy = false }()

	e.balance -= hand.Bet
	hand.Bet *= 2
	hand.Doubled = true

	card, err := e.draw(true)
	if err != nil {
		return fmt.Errorf("double: %w", err)
	}
	hand.Cards = append(hand.Cards, card)
	score := scoring.Best(hand.Cards)

	e.logger.Debug("Player doubles", "round", e.roundID, "hand", e.active, "card", card, "score", score, "bet", hand.Bet)
	e.bus.Publish(CardDealtEvent{stamp: e.now(), RoundID: e.roundID, To: ToPlayer, HandIndex: e.active, Card: card})
	e.bus.Publish(PlayerActionEvent{
		stamp:     e.now(),
		RoundID:   e.roundID,
		Action:    strategy.Double,
		HandIndex: e.active,
		HandCount: len(e.hands),
		Card:      card,
		Score:     score,
		Bust:      scoring.IsBust(hand.Cards),
		Bet:       hand.Bet,
	})
	return e.advance()
}

// Split moves the second card of a pair into a new hand with its own stake and
// draws one card to each. The original hand stays active.
func (e *Engine) Split() error {
	hand, err := e.playerTurn("split")
	if err != nil {
		return err
	}
	if err := e.canSplit(hand); err != nil {
		return err
	}
	if err := e.ensureCards("split", 2); err != nil {
		return err
	}

	e.busy = true
	defer func() { e.busy = false }()

	e.balance -= e.currentBet
	split := &PlayerHand{Cards: []deck.Card{hand.Cards[1]}, Bet: e.currentBet}
	hand.Cards = hand.Cards[:1:1]
	e.hands = append(e.hands, split)
	newIndex := len(e.hands) - 1

	for _, target := range []struct {
		hand  *PlayerHand
		index int
	}{{hand, e.active}, {split, newIndex}} {
		card, err := e.draw(true)
		if err != nil {
			return fmt.Errorf("split: %w", err)
		}
		target.hand.Cards = append(target.hand.Cards, card)
		e.bus.Publish(CardDealtEvent{stamp: e.now(), RoundID: e.roundID, To: ToPlayer, HandIndex: target.index, Card: card})
	}

	e.logger.Debug("Player splits", "round", e.roundID, "hand", e.active, "newHand", newIndex, "hands", len(e.hands))
	e.bus.Publish(PlayerActionEvent{
		stamp:        e.now(),
		RoundID:      e.roundID,
		Action:       strategy.Split,
		HandIndex:    e.active,
		HandCount:    len(e.hands),
		Score:        scoring.Best(hand.Cards),
		Bet:          hand.Bet,
		NewHandIndex: newIndex,
		NewHandScore: scoring.Best(split.Cards),
	})
	return nil
}

// Execute applies a player action by value.
func (e *Engine) Execute(action strategy.Action) error {
	switch action {
	case strategy.Hit:
		return e.Hit()
	case strategy.Stand:
		return e.Stand()
	case strategy.Double:
		return e.DoubleDown()
	case strategy.Split:
		return e.Split()
	default:
		return notAllowed(action.String(), "not a player action")
	}
}

// Shortcut performs the single obvious next step: Proceed while the dealer is
// paused, otherwise the recommended action when it is currently allowed.
func (e *Engine) Shortcut() error {
	if e.awaiting {
		return e.Proceed()
	}
	if e.state != Playing {
		return fmt.Errorf("shortcut during %s: %w", e.state, ErrWrongState)
	}
	action := e.RecommendedAction()
	if !e.Eligibility().Allows(action) {
		return notAllowed(action.String(), "recommended action is not available")
	}
	return e.Execute(action)
}

// playerTurn checks the guards shared by every player action and returns the active hand.
func (e *Engine) playerTurn(action string) (*PlayerHand, error) {
	if e.Busy() {
		return nil, fmt.Errorf("%s: %w", action, ErrBusy)
	}
	if e.state != Playing {
		return nil, fmt.Errorf("%s during %s: %w", action, e.state, ErrWrongState)
	}
	return e.hands[e.active], nil
}

func (e *Engine) canDouble(hand *PlayerHand) error {
	if len(hand.Cards) != 2 {
		return notAllowed("double", "only on the first two cards")
	}
	if e.balance < e.currentBet {
		return notAllowed("double", "balance too low")
	}
	return nil
}

func (e *Engine) canSplit(hand *PlayerHand) error {
	if len(hand.Cards) != 2 || hand.Cards[0].Rank != hand.Cards[1].Rank {
		return notAllowed("split", "only a pair of equal ranks can split")
	}
	if e.balance < e.currentBet {
		return notAllowed("split", "balance too low")
	}
	return nil
}

// ensureCards fails before a command changes anything when the shoe cannot
// supply the n cards it is about to draw.
func (e *Engine) ensureCards(action string, n int) error {
	left := e.shoe.Remaining()
	if left >= n {
		return nil
	}
	e.logger.Error("Shoe exhausted", "action", action, "need", n, "left", left)
	return fmt.Errorf("%s needs %d cards, %d left: %w", action, n, left, deck.ErrEmptyShoe)
}

// advance moves to the next player hand, or to the dealer after the last one.
func (e *Engine) advance() error {
	if e.active < len(e.hands)-1 {
		e.active++
		e.logger.Debug("Next hand", "round", e.roundID, "hand", e.active)
		return nil
	}
	return e.startDealerTurn()
}

// draw takes the next card from the shoe, counting it when visible.
func (e *Engine) draw(visible bool) (deck.Card, error) {
	card, err := e.shoe.Draw()
	if err != nil {
		e.logger.Error("Shoe exhausted mid-round", "round", e.roundID, "error", err)
		return deck.Card{}, err
	}
	if visible {
		e.counter.Update(card)
	}
	return card, nil
}

func (e *Engine) reshuffle() {
	e.shoe.Reset()
	e.counter.Reset()
	e.logger.Info("Shoe reshuffled", "cards", e.shoe.Remaining())
	e.bus.Publish(ShuffleEvent{stamp: e.now(), Cards: e.shoe.Remaining()})
}

func (e *Engine) setState(to RoundState) {
	from := e.state
	e.state = to
	e.logger.Debug("State change", "round", e.roundID, "from", from, "to", to)
	e.bus.Publish(StateChangeEvent{stamp: e.now(), RoundID: e.roundID, From: from, To: to})
}

func (e *Engine) now() stamp {
	return stamp{at: e.clock.Now()}
}

func (e *Engine) heroLabel(index int) string {
	return heroLabel(index, len(e.hands))
}

func (e *Engine) toActMessage() string {
	return e.heroLabel(e.active) + " to act"
}
