package main

import (
	"bytes"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test", "config_file": "blackjack.hcl"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestCLI_DefaultsToPlay(t *testing.T) {
	cli, ctx := parse(t)
	assert.Equal(t, "play", ctx.Command())
	assert.Equal(t, "blackjack.hcl", cli.Config)
}

func TestCLI_Simulate(t *testing.T) {
	cli, ctx := parse(t, "simulate", "--rounds", "500", "--workers", "2", "--seed", "9")
	assert.Equal(t, "simulate", ctx.Command())
	assert.Equal(t, 500, cli.Simulate.Rounds)
	assert.Equal(t, 2, cli.Simulate.Workers)
	assert.Equal(t, int64(9), cli.Simulate.Seed)
}

func TestCLI_Advise(t *testing.T) {
	cli, ctx := parse(t, "advise", "--hand", "As 7d", "--dealer", "9h", "--tc", "1.5")
	assert.Equal(t, "advise", ctx.Command())
	assert.Equal(t, "As 7d", cli.Advise.Hand)
	assert.Equal(t, 1.5, cli.Advise.TC)
	assert.NoError(t, cli.Advise.Run())
}

func TestCLI_AdviseGradesPlay(t *testing.T) {
	cli, _ := parse(t, "advise", "--hand", "As 7d", "--dealer", "9h", "--play", "s")

	var out bytes.Buffer
	require.NoError(t, cli.Advise.run(&out))
	assert.Contains(t, out.String(), "As 7d (8 / 18) vs 9♥: Hit")
	assert.Contains(t, out.String(), "Stand is wrong, the advisor plays Hit")

	out.Reset()
	cli.Advise.Play = "hit"
	require.NoError(t, cli.Advise.run(&out))
	assert.Contains(t, out.String(), "Hit is correct")

	cli.Advise.Play = "surrender"
	assert.Error(t, cli.Advise.run(&out))
}

func TestCLI_AdviseRejectsBadCards(t *testing.T) {
	cmd := AdviseCmd{Hand: "Zz", Dealer: "9h"}
	assert.Error(t, cmd.Run())

	cmd = AdviseCmd{Hand: "As 7d", Dealer: "nope"}
	assert.Error(t, cmd.Run())
}

func TestCLI_ConfigFromEnv(t *testing.T) {
	t.Setenv("BLACKJACK_CONFIG", "custom.hcl")
	cli, _ := parse(t, "simulate")
	assert.Equal(t, "custom.hcl", cli.Config)
}
