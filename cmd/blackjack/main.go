package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lox/blackjack/internal/config"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version    kong.VersionFlag `short:"v" help:"Show version"`
	Config     string           `short:"c" env:"BLACKJACK_CONFIG" default:"${config_file}" help:"HCL configuration file"`
	Play       PlayCmd          `cmd:"" default:"withargs" help:"Play at the terminal table"`
	Simulate   SimulateCmd      `cmd:"" help:"Play rounds headlessly with the advisor and report statistics"`
	Advise     AdviseCmd        `cmd:"" help:"Ask the advisor what to do with a hand"`
	VersionCmd VersionCmd       `cmd:"" name:"version" help:"Print the version"`
}

// loadConfig reads the configuration file named on the command line.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.Config, err)
	}
	return cfg, nil
}

type VersionCmd struct{}

func (VersionCmd) Run() error {
	fmt.Println(version)
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Blackjack trainer with a basic-strategy advisor and Hi-Lo counting"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":     version,
			"config_file": config.DefaultFile,
		},
		kong.Bind(&cli),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
