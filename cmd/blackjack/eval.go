package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjackrl/internal/agent"
	"github.com/lox/blackjackrl/internal/randutil"
	"github.com/lox/blackjackrl/internal/report"
	"github.com/lox/blackjackrl/internal/table"
	"github.com/lox/blackjackrl/internal/trainer"
)

type EvalCmd struct {
	Model    string `arg:"" help:"Path to a saved Q-table" type:"existingfile"`
	Episodes int    `short:"n" default:"10000" help:"Number of greedy episodes"`
	Seed     int64  `help:"Shoe seed; 0 uses time seed" default:"0"`
}

func (c *EvalCmd) Run(ctx context.Context, logger *log.Logger) error {
	ag, rules, err := agent.Load(c.Model, logger)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	seed := randutil.Resolve(c.Seed)
	tbl, err := table.NewTable(rules, randutil.New(seed), logger)
	if err != nil {
		return err
	}
	tr, err := trainer.New(trainer.DefaultConfig(0), tbl, ag,
		trainer.WithLogger(logger),
		trainer.WithLabel("eval"))
	if err != nil {
		return err
	}

	logger.Info("Evaluating", "model", c.Model, "states", ag.Table().Len(), "seed", seed)
	stats, err := tr.Evaluate(ctx, c.Episodes)
	if err != nil {
		return err
	}
	fmt.Print(report.Evaluation(stats.Summary(c.Model, ag.Table().Len())))
	return nil
}
