package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/fileutil"
	"github.com/lox/blackjack/internal/simulator"
)

type SimulateCmd struct {
	Rounds  int    `default:"100000" help:"Number of rounds to simulate"`
	Workers int    `default:"4" help:"Parallel workers, each with its own shoe and bankroll"`
	Seed    int64  `default:"0" help:"RNG seed (0 for random)"`
	Balance int    `help:"Starting bankroll per worker (defaults to the configured balance)"`
	Report  string `help:"Also write the summary to this file" type:"path"`
	Verbose bool   `short:"V" help:"Verbose logging"`
}

func (c *SimulateCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := log.WarnLevel
	if c.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})

	balance := cfg.Table.StartingBalance
	if c.Balance > 0 {
		balance = c.Balance
	}

	sim := simulator.New(simulator.Config{
		Rounds:      c.Rounds,
		Workers:     c.Workers,
		Seed:        c.Seed,
		Decks:       cfg.Shoe.Decks,
		Threshold:   cfg.Shoe.ShuffleThreshold,
		NumbersOnly: cfg.Shoe.NumbersOnly,
		Balance:     balance,
		Ramp:        cfg.Ramp(),
		Logger:      logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Simulating %d rounds on %d workers (seed %d)...\n", c.Rounds, c.Workers, sim.Seed())
	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	simulator.PrintSummary(os.Stdout, stats, sim.Seed())
	if c.Report != "" {
		err := fileutil.WriteAtomic(c.Report, 0o644, func(w io.Writer) error {
			simulator.PrintSummary(w, stats, sim.Seed())
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Info("Report written", "path", c.Report)
	}
	fmt.Printf("\nCompleted in %s (%.0f rounds/sec)\n", elapsed.Round(time.Millisecond),
		float64(stats.Rounds)/elapsed.Seconds())
	return nil
}
