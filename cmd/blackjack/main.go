package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/lox/blackjackrl/internal/report"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Debug   bool             `help:"Enable debug logging"`
	NoColor bool             `name:"no-color" help:"Disable coloured output"`

	Train   TrainCmd   `cmd:"" help:"Train one scenario and evaluate the learned policy"`
	Run     RunCmd     `cmd:"" help:"Train several scenarios, optionally in parallel"`
	Eval    EvalCmd    `cmd:"" help:"Evaluate a saved Q-table greedily"`
	Inspect InspectCmd `cmd:"" help:"Summarize an episode log or print a saved policy"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Blackjack simulator with a tabular Q-learning player"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	if cli.NoColor {
		report.DisableColor()
	}
	logger := SetupLogger(cli.Debug)
	ctx := SetupSignalHandler(logger)
	kctx.BindTo(ctx, (*context.Context)(nil))

	err := kctx.Run(logger)
	kctx.FatalIfErrorf(err)
}
