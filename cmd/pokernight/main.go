package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config string `short:"c" default:"pokernight.hcl" env:"POKERNIGHT_CONFIG" help:"HCL configuration file"`
	Debug  bool   `env:"POKERNIGHT_DEBUG" help:"Log at debug level"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"withargs" help:"Sit down at the table"`
	Simulate SimulateCmd      `cmd:"" help:"Play hands unattended and report the results"`
	Balance  BalanceCmd       `cmd:"" help:"Show a player's points"`
	Grant    GrantCmd         `cmd:"" help:"Add points to a player"`
}

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokernight"),
		kong.Description("Texas Hold'em against a table of bots, staked from your points"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
