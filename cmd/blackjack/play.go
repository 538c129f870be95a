package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/tui"
)

type PlayCmd struct {
	Seed        int64 `help:"Shuffle seed (0 for random)" default:"0"`
	Decks       int   `env:"BLACKJACK_DECKS" help:"Override the number of decks in the shoe"`
	NumbersOnly bool  `env:"BLACKJACK_NUMBERS_ONLY" help:"Replace J, Q and K with plain tens"`
	PauseDealer bool  `env:"BLACKJACK_PAUSE_DEALER" help:"Wait for space before every dealer step"`
	Quiet       bool  `env:"BLACKJACK_QUIET" help:"Disable the narration log"`
}

func (c *PlayCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	if c.Decks != 0 {
		cfg.Shoe.Decks = c.Decks
	}
	if c.NumbersOnly {
		cfg.Shoe.NumbersOnly = true
	}
	if c.PauseDealer {
		cfg.Pacing.PauseDealer = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			log.Error("Failed to close log file", "error", err)
		}
	}()

	logger := log.NewWithOptions(logFile, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "blackjack",
		Level:           cfg.LogLevel(),
	})
	logger.Info("Starting table", "decks", cfg.Shoe.Decks, "numbersOnly", cfg.Shoe.NumbersOnly,
		"balance", cfg.Table.StartingBalance, "narration", cfg.NarrationEnabled())

	opts := append(cfg.EngineOptions(),
		game.WithPauseDealer(true),
		game.WithLogger(logger),
	)
	if c.Seed != 0 {
		opts = append(opts, game.WithSeed(c.Seed))
	}

	var narrator *game.Narrator
	if cfg.NarrationEnabled() && !c.Quiet {
		narrator = game.NewNarrator(game.DefaultNarrationBuffer, logger)
		opts = append(opts, game.WithSubscriber(narrator))
	}

	engine, err := game.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	styles := tui.NewStyles(os.Stdout, cfg.UI.Theme)
	model := tui.NewModel(engine, tui.Options{
		Logger:       logger,
		Styles:       &styles,
		Narrator:     narrator,
		HeroDelay:    cfg.HeroDelay(),
		ActionDelay:  cfg.ActionDelay(),
		ManualDealer: cfg.Pacing.PauseDealer,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	if result, ok := engine.LastResult(); ok {
		logger.Info("Leaving table", "balance", engine.Balance(), "lastRound", result.Summary())
	}
	fmt.Printf("Final balance: $%d\n", engine.Balance())
	return nil
}
