package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/counting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blackjack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
shoe {
  decks        = 6
  numbers_only = true
}

narration {
  enabled = false
}

pacing {
  pause_dealer = true
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 6, cfg.Shoe.Decks)
	assert.True(t, cfg.Shoe.NumbersOnly)
	assert.Equal(t, 0.25, cfg.Shoe.ShuffleThreshold)
	assert.Equal(t, 200, cfg.Table.StartingBalance)
	assert.False(t, cfg.NarrationEnabled())
	assert.True(t, cfg.Pacing.PauseDealer)
	assert.Equal(t, 1100*time.Millisecond, cfg.ActionDelay())
	assert.Equal(t, 500*time.Millisecond, cfg.HeroDelay())
	assert.Equal(t, "blackjack.log", cfg.UI.LogFile)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
shoe {
  decks             = 4
  shuffle_threshold = 0.3
}

table {
  starting_balance = 500
  min_bet          = 5
  bet_unit         = 25
}

pacing {
  action_delay_ms = 300
  hero_delay_ms   = 100
}

ui {
  log_level = "debug"
  log_file  = "trainer.log"
  theme     = "dark"
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, counting.BetRamp{Min: 5, Unit: 25}, cfg.Ramp())
	assert.Equal(t, 500, cfg.Table.StartingBalance)
	assert.Equal(t, 300*time.Millisecond, cfg.ActionDelay())
	assert.Equal(t, log.DebugLevel, cfg.LogLevel())
	assert.Equal(t, "trainer.log", cfg.UI.LogFile)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.True(t, cfg.NarrationEnabled())
	assert.Len(t, cfg.EngineOptions(), 5)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, `shoe {`))
	assert.ErrorContains(t, err, "parse")

	_, err = Load(writeConfig(t, `shoe { decks = "many" }`))
	assert.ErrorContains(t, err, "decode")

	_, err = Load(writeConfig(t, `croupier { name = "Sam" }`))
	assert.ErrorContains(t, err, "decode")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"no decks", func(c *Config) { c.Shoe.Decks = 0 }, "at least one deck"},
		{"threshold too high", func(c *Config) { c.Shoe.ShuffleThreshold = 1 }, "shuffle threshold"},
		{"reserve too small", func(c *Config) { c.Shoe.Decks = 1 }, "reserve"},
		{"no bankroll", func(c *Config) { c.Table.StartingBalance = 0 }, "starting balance"},
		{"no minimum bet", func(c *Config) { c.Table.MinBet = 0 }, "minimum bet"},
		{"negative unit", func(c *Config) { c.Table.BetUnit = -1 }, "bet unit"},
		{"negative delay", func(c *Config) { c.Pacing.HeroDelayMS = -1 }, "pacing"},
		{"bad log level", func(c *Config) { c.UI.LogLevel = "loud" }, "log level"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "theme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
