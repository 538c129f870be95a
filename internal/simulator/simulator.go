// Package simulator plays blackjack rounds headlessly with the advisor making
// every decision and the count ramp choosing every bet.
package simulator

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/strategy"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for running simulations
type Config struct {
	Rounds      int
	Workers     int
	Seed        int64
	Decks       int
	Threshold   float64
	NumbersOnly bool
	Balance     int
	Ramp        counting.BetRamp
	Logger      *log.Logger
}

// Simulator runs blackjack simulations
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration. Zero values fall
// back to the engine defaults, one worker and a clock-derived seed.
func New(config Config) *Simulator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Decks == 0 {
		config.Decks = game.DefaultDecks
	}
	if config.Threshold == 0 {
		config.Threshold = game.DefaultShuffleThreshold
	}
	if config.Balance == 0 {
		config.Balance = game.DefaultBalance
	}
	if config.Ramp == (counting.BetRamp{}) {
		config.Ramp = counting.DefaultRamp
	}
	if config.Logger == nil {
		config.Logger = log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	}
	config.Seed = randutil.Seed(config.Seed)

	return &Simulator{config: config, logger: config.Logger.WithPrefix("simulator")}
}

// Seed returns the base seed the run uses, so a clock-seeded run can be replayed.
func (s *Simulator) Seed() int64 { return s.config.Seed }

// Run plays the configured number of rounds split across the workers and
// returns the merged statistics.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Rounds < 1 {
		return nil, fmt.Errorf("rounds must be positive, got %d", s.config.Rounds)
	}

	workers := min(s.config.Workers, s.config.Rounds)
	results := make([]*statistics.Statistics, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		rounds := s.config.Rounds / workers
		if w < s.config.Rounds%workers {
			rounds++
		}
		g.Go(func() error {
			stats, err := s.runWorker(ctx, w, rounds)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			results[w] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Merge(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Info("Simulation complete", "rounds", stats.Rounds, "workers", workers,
		"seed", s.config.Seed, "mean", stats.Mean(), "bustedOut", stats.BustedOut)
	return stats, nil
}

// runWorker plays rounds on its own engine. A bankroll that runs dry is
// counted and replaced by a fresh one on a freshly seeded shoe.
func (s *Simulator) runWorker(ctx context.Context, worker, rounds int) (*statistics.Statistics, error) {
	stats := &statistics.Statistics{}
	workerSeed := randutil.Derive(s.config.Seed, worker)

	tally := &roundTally{}
	bankroll := 0
	engine, seed, err := s.newEngine(workerSeed, bankroll, tally)
	if err != nil {
		return nil, err
	}

	for round := 0; round < rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if engine.Balance() < 1 {
			stats.BustedOut++
			bankroll++
			s.logger.Debug("Bankroll busted", "worker", worker, "round", round)
			if engine, seed, err = s.newEngine(workerSeed, bankroll, tally); err != nil {
				return nil, err
			}
		}

		result, err := playRound(engine, tally)
		if err != nil {
			return nil, fmt.Errorf("round %d (seed %d): %w", round+1, seed, err)
		}
		result.Seed = seed
		stats.Add(result)
	}
	return stats, nil
}

func (s *Simulator) newEngine(workerSeed int64, bankroll int, tally *roundTally) (*game.Engine, int64, error) {
	seed := randutil.Derive(workerSeed, bankroll)
	engine, err := game.New(
		game.WithSeed(seed),
		game.WithDecks(s.config.Decks),
		game.WithShuffleThreshold(s.config.Threshold),
		game.WithNumbersOnly(s.config.NumbersOnly),
		game.WithBalance(s.config.Balance),
		game.WithBetRamp(s.config.Ramp),
		game.WithLogger(s.config.Logger),
		game.WithSubscriber(tally),
		game.WithRoundIDs(func() string { return "" }),
	)
	if err != nil {
		return nil, 0, err
	}
	return engine, seed, nil
}

// playRound bets the ramp amount, follows the advisor until the round settles
// and summarises the result.
func playRound(engine *game.Engine, tally *roundTally) (statistics.RoundResult, error) {
	tc := engine.TrueCount()
	bet := max(1, min(engine.RecommendedBet(), engine.Balance()))

	tally.reset()
	if err := engine.PlaceBet(bet); err != nil {
		return statistics.RoundResult{}, err
	}

	for engine.State() == game.Playing {
		if err := engine.Execute(chooseAction(engine)); err != nil {
			return statistics.RoundResult{}, err
		}
	}

	settled, ok := engine.LastResult()
	if !ok {
		return statistics.RoundResult{}, fmt.Errorf("round ended in %s without a result", engine.State())
	}

	result := statistics.RoundResult{
		Net:       settled.NetChange,
		TrueCount: tc,
		Doubled:   tally.doubles,
		Splits:    tally.splits,
		Natural:   tally.natural,
	}
	for _, h := range settled.Hands {
		result.Wagered += h.Bet
		switch h.Outcome {
		case game.Win:
			result.Wins++
		case game.Lose:
			result.Losses++
		case game.Push:
			result.Pushes++
		case game.Bust:
			result.Busts++
		}
	}
	return result, nil
}

// chooseAction is the advisor's action when the engine allows it. Doubling
// on three or more cards is not allowed, so the hand hits instead; a hand that
// may no longer hit stands.
func chooseAction(engine *game.Engine) strategy.Action {
	el := engine.Eligibility()
	action := engine.RecommendedAction()
	switch {
	case el.Allows(action):
		return action
	case el.Hit:
		return strategy.Hit
	default:
		return strategy.Stand
	}
}

// roundTally counts the decisions taken during one round from engine events.
type roundTally struct {
	doubles int
	splits  int
	natural bool
}

func (t *roundTally) reset() { *t = roundTally{} }

func (t *roundTally) OnEvent(ev game.Event) {
	switch ev := ev.(type) {
	case game.DealCompleteEvent:
		t.natural = ev.Natural
	case game.PlayerActionEvent:
		switch ev.Action {
		case strategy.Double:
			t.doubles++
		case strategy.Split:
			t.splits++
		}
	}
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics, seed int64) {
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS (seed %d) ===\n", seed)
	fmt.Fprintf(w, "Rounds played: %d (%d hands)\n", stats.Rounds, stats.Hands)
	fmt.Fprintf(w, "Total wagered: %d\n", stats.Wagered)

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f per round\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f per round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] per round\n", low, high)
	fmt.Fprintf(w, "Edge: %.3f%% of wagered\n", stats.Edge()*100)

	fmt.Fprintf(w, "\n=== HAND OUTCOMES ===\n")
	pct := func(n int) float64 {
		if stats.Hands == 0 {
			return 0
		}
		return float64(n) / float64(stats.Hands) * 100
	}
	fmt.Fprintf(w, "Wins: %d (%.1f%%)  Losses: %d (%.1f%%)  Pushes: %d (%.1f%%)  Busts: %d (%.1f%%)\n",
		stats.Wins, pct(stats.Wins), stats.Losses, pct(stats.Losses),
		stats.Pushes, pct(stats.Pushes), stats.Busts, pct(stats.Busts))
	fmt.Fprintf(w, "Doubles: %d  Splits: %d  Naturals: %d  Busted bankrolls: %d\n",
		stats.Doubles, stats.Splits, stats.Naturals, stats.BustedOut)

	fmt.Fprintf(w, "\n=== TRUE COUNT ANALYSIS ===\n")
	for tc := statistics.MinBucket; tc <= statistics.MaxBucket; tc++ {
		b := stats.Bucket(tc)
		if b.Rounds == 0 {
			continue
		}
		label := fmt.Sprintf("%+d", tc)
		switch tc {
		case statistics.MinBucket:
			label += " or less"
		case statistics.MaxBucket:
			label += " or more"
		}
		fmt.Fprintf(w, "TC %s: %d rounds, %.3f per round, %d wagered\n", label, b.Rounds, b.Mean(), b.Wagered)
	}
}
