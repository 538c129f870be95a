package game

import (
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
)

const (
	// DefaultDecks is the number of decks in the shoe.
	DefaultDecks = 2
	// DefaultShuffleThreshold reshuffles once fewer than a quarter of the cards remain.
	DefaultShuffleThreshold = 0.25
	// DefaultBalance is the starting bankroll.
	DefaultBalance = 200
	// MinReserveCards is the smallest reshuffle reserve New accepts for a shoe it builds.
	MinReserveCards = 20
)

// Option configures an Engine during creation.
type Option func(*engineConfig)

// engineConfig holds all configuration for creating an engine.
type engineConfig struct {
	decks       int
	threshold   float64
	numbersOnly bool
	balance     int
	rng         *rand.Rand
	shoe        *deck.Shoe // If provided, used as-is instead of building one
	ramp        counting.BetRamp
	pauseDealer bool
	logger      *log.Logger
	clock       quartz.Clock
	subscribers []EventSubscriber
	newID       func() string
}

func defaultConfig() *engineConfig {
	return &engineConfig{
		decks:     DefaultDecks,
		threshold: DefaultShuffleThreshold,
		balance:   DefaultBalance,
		ramp:      counting.DefaultRamp,
		newID: func() string {
			return uuid.NewString()[:8]
		},
	}
}

// WithDecks sets how many decks make up the shoe.
func WithDecks(decks int) Option {
	return func(c *engineConfig) { c.decks = decks }
}

// WithShuffleThreshold sets the remaining fraction below which a new round reshuffles.
func WithShuffleThreshold(threshold float64) Option {
	return func(c *engineConfig) { c.threshold = threshold }
}

// WithNumbersOnly replaces J, Q and K with plain tens.
func WithNumbersOnly(numbersOnly bool) Option {
	return func(c *engineConfig) { c.numbersOnly = numbersOnly }
}

// WithBalance sets the starting bankroll.
func WithBalance(balance int) Option {
	return func(c *engineConfig) { c.balance = balance }
}

// WithRNG sets the generator used to shuffle the shoe.
func WithRNG(rng *rand.Rand) Option {
	return func(c *engineConfig) { c.rng = rng }
}

// WithSeed is shorthand for WithRNG(randutil.New(seed)).
func WithSeed(seed int64) Option {
	return func(c *engineConfig) { c.rng = randutil.New(seed) }
}

// WithShoe deals from the given shoe. Deck count, numbers-only mode and the
// reserve check are then the caller's responsibility.
func WithShoe(shoe *deck.Shoe) Option {
	return func(c *engineConfig) { c.shoe = shoe }
}

// WithBetRamp sets the ramp behind RecommendedBet.
func WithBetRamp(ramp counting.BetRamp) Option {
	return func(c *engineConfig) { c.ramp = ramp }
}

// WithPauseDealer makes the dealer turn wait for Proceed before every step.
func WithPauseDealer(pause bool) Option {
	return func(c *engineConfig) { c.pauseDealer = pause }
}

// WithLogger sets the logger. The engine logs under the "engine" prefix.
func WithLogger(logger *log.Logger) Option {
	return func(c *engineConfig) { c.logger = logger }
}

// WithClock sets the clock used to timestamp events.
func WithClock(clock quartz.Clock) Option {
	return func(c *engineConfig) { c.clock = clock }
}

// WithSubscriber subscribes to engine events from construction onwards, so the
// subscriber also sees the initial shuffle.
func WithSubscriber(sub EventSubscriber) Option {
	return func(c *engineConfig) { c.subscribers = append(c.subscribers, sub) }
}

// WithRoundIDs overrides how round IDs are generated.
func WithRoundIDs(next func() string) Option {
	return func(c *engineConfig) { c.newID = next }
}

func (c *engineConfig) complete() {
	if c.rng == nil {
		c.rng = randutil.New(randutil.Seed(0))
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	}
	if c.clock == nil {
		c.clock = quartz.NewReal()
	}
}
