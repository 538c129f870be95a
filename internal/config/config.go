// Package config loads the HCL configuration file for the blackjack trainer.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// DefaultFile is the configuration file read when no path is given.
const DefaultFile = "blackjack.hcl"

// Config represents the complete trainer configuration
type Config struct {
	Shoe      ShoeSettings      `hcl:"shoe,block"`
	Table     TableSettings     `hcl:"table,block"`
	Narration NarrationSettings `hcl:"narration,block"`
	Pacing    PacingSettings    `hcl:"pacing,block"`
	UI        UISettings        `hcl:"ui,block"`
}

// ShoeSettings describes the shoe cards are dealt from
type ShoeSettings struct {
	Decks            int     `hcl:"decks,optional"`
	ShuffleThreshold float64 `hcl:"shuffle_threshold,optional"`
	NumbersOnly      bool    `hcl:"numbers_only,optional"`
}

// TableSettings contains the bankroll and betting ramp
type TableSettings struct {
	StartingBalance int `hcl:"starting_balance,optional"`
	MinBet          int `hcl:"min_bet,optional"`
	BetUnit         int `hcl:"bet_unit,optional"`
}

// NarrationSettings controls the spoken-style narration log
type NarrationSettings struct {
	Enabled *bool `hcl:"enabled,optional"`
}

// PacingSettings controls how quickly the dealer plays in the terminal UI
type PacingSettings struct {
	PauseDealer   bool `hcl:"pause_dealer,optional"`
	ActionDelayMS int  `hcl:"action_delay_ms,optional"`
	HeroDelayMS   int  `hcl:"hero_delay_ms,optional"`
}

// UISettings contains user interface settings
type UISettings struct {
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
	Theme    string `hcl:"theme,optional"`
}

// Default returns the default configuration
func Default() *Config {
	enabled := true
	return &Config{
		Shoe: ShoeSettings{
			Decks:            game.DefaultDecks,
			ShuffleThreshold: game.DefaultShuffleThreshold,
		},
		Table: TableSettings{
			StartingBalance: game.DefaultBalance,
			MinBet:          counting.DefaultRamp.Min,
			BetUnit:         counting.DefaultRamp.Unit,
		},
		Narration: NarrationSettings{Enabled: &enabled},
		Pacing: PacingSettings{
			ActionDelayMS: 1100,
			HeroDelayMS:   500,
		},
		UI: UISettings{
			LogLevel: "warn",
			LogFile:  "blackjack.log",
			Theme:    "auto",
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults, and fields left out of the file keep their default values.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	return raw.merge(Default()), nil
}

// fileConfig mirrors Config with every block optional, so a file may set only
// the parts it cares about.
type fileConfig struct {
	Shoe      *ShoeSettings      `hcl:"shoe,block"`
	Table     *TableSettings     `hcl:"table,block"`
	Narration *NarrationSettings `hcl:"narration,block"`
	Pacing    *PacingSettings    `hcl:"pacing,block"`
	UI        *UISettings        `hcl:"ui,block"`
}

func (f fileConfig) merge(config *Config) *Config {
	if s := f.Shoe; s != nil {
		if s.Decks != 0 {
			config.Shoe.Decks = s.Decks
		}
		if s.ShuffleThreshold != 0 {
			config.Shoe.ShuffleThreshold = s.ShuffleThreshold
		}
		config.Shoe.NumbersOnly = s.NumbersOnly
	}

	if t := f.Table; t != nil {
		if t.StartingBalance != 0 {
			config.Table.StartingBalance = t.StartingBalance
		}
		if t.MinBet != 0 {
			config.Table.MinBet = t.MinBet
		}
		if t.BetUnit != 0 {
			config.Table.BetUnit = t.BetUnit
		}
	}

	if n := f.Narration; n != nil && n.Enabled != nil {
		config.Narration.Enabled = n.Enabled
	}

	if p := f.Pacing; p != nil {
		config.Pacing.PauseDealer = p.PauseDealer
		if p.ActionDelayMS != 0 {
			config.Pacing.ActionDelayMS = p.ActionDelayMS
		}
		if p.HeroDelayMS != 0 {
			config.Pacing.HeroDelayMS = p.HeroDelayMS
		}
	}

	if u := f.UI; u != nil {
		if u.LogLevel != "" {
			config.UI.LogLevel = u.LogLevel
		}
		if u.LogFile != "" {
			config.UI.LogFile = u.LogFile
		}
		if u.Theme != "" {
			config.UI.Theme = u.Theme
		}
	}
	return config
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Shoe.Decks < 1 {
		return fmt.Errorf("shoe needs at least one deck, got %d", c.Shoe.Decks)
	}
	if c.Shoe.ShuffleThreshold < 0 || c.Shoe.ShuffleThreshold >= 1 {
		return fmt.Errorf("shuffle threshold must be in [0, 1), got %v", c.Shoe.ShuffleThreshold)
	}
	if reserve := float64(c.Shoe.Decks*deck.DeckSize) * c.Shoe.ShuffleThreshold; reserve < game.MinReserveCards {
		return fmt.Errorf("%d decks at threshold %v keep %.1f cards in reserve, need %d",
			c.Shoe.Decks, c.Shoe.ShuffleThreshold, reserve, game.MinReserveCards)
	}

	if c.Table.StartingBalance <= 0 {
		return fmt.Errorf("starting balance must be positive")
	}
	if c.Table.MinBet <= 0 {
		return fmt.Errorf("minimum bet must be positive")
	}
	if c.Table.BetUnit < 0 {
		return fmt.Errorf("bet unit cannot be negative")
	}

	if c.Pacing.ActionDelayMS < 0 || c.Pacing.HeroDelayMS < 0 {
		return fmt.Errorf("pacing delays cannot be negative")
	}

	if _, err := log.ParseLevel(c.UI.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	validThemes := map[string]bool{
		"auto":  true,
		"dark":  true,
		"light": true,
		"plain": true,
	}
	if !validThemes[c.UI.Theme] {
		return fmt.Errorf("invalid theme: %s", c.UI.Theme)
	}

	return nil
}

// NarrationEnabled reports whether narration is switched on.
func (c *Config) NarrationEnabled() bool {
	return c.Narration.Enabled == nil || *c.Narration.Enabled
}

// Ramp returns the betting ramp described by the table block.
func (c *Config) Ramp() counting.BetRamp {
	return counting.BetRamp{Min: c.Table.MinBet, Unit: c.Table.BetUnit}
}

// ActionDelay is the pause between paced dealer steps.
func (c *Config) ActionDelay() time.Duration {
	return time.Duration(c.Pacing.ActionDelayMS) * time.Millisecond
}

// HeroDelay is how long input stays locked after a player action.
func (c *Config) HeroDelay() time.Duration {
	return time.Duration(c.Pacing.HeroDelayMS) * time.Millisecond
}

// LogLevel returns the parsed log level, falling back to warn.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.UI.LogLevel)
	if err != nil {
		return log.WarnLevel
	}
	return level
}

// EngineOptions translates the configuration into engine options.
func (c *Config) EngineOptions() []game.Option {
	return []game.Option{
		game.WithDecks(c.Shoe.Decks),
		game.WithShuffleThreshold(c.Shoe.ShuffleThreshold),
		game.WithNumbersOnly(c.Shoe.NumbersOnly),
		game.WithBalance(c.Table.StartingBalance),
		game.WithBetRamp(c.Ramp()),
	}
}
