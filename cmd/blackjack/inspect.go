package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjackrl/internal/agent"
	"github.com/lox/blackjackrl/internal/episodelog"
	"github.com/lox/blackjackrl/internal/report"
	"github.com/lox/blackjackrl/internal/statistics"
)

type InspectCmd struct {
	Paths []string `arg:"" help:"Episode logs (.csv) or saved Q-tables (.json)"`
	Count *int     `help:"Only chart states with this count bucket"`
	Bet   *int     `help:"Only chart states with this bet"`
}

func (c *InspectCmd) Run(ctx context.Context, logger *log.Logger) error {
	var summaries []statistics.Summary
	for _, path := range c.Paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			s, err := episodelog.Summarize(path)
			if err != nil {
				return err
			}
			summaries = append(summaries, s)
		case ".json":
			if err := c.inspectModel(path, logger); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: unsupported file type", path)
		}
	}
	if len(summaries) > 0 {
		fmt.Println(report.SummaryTable(summaries))
	}
	return nil
}

func (c *InspectCmd) inspectModel(path string, logger *log.Logger) error {
	ag, rules, err := agent.Load(path, logger)
	if err != nil {
		return err
	}
	fmt.Println(report.Banner(filepath.Base(path)))
	fmt.Printf("States: %d  Episodes: %d  Epsilon: %.4f\n", ag.Table().Len(), ag.Episodes(), ag.Epsilon())
	fmt.Printf("Rules: decks=%d h17=%t payout=%s counting=%t true_count=%t bet_scaling=%t\n",
		rules.Decks, rules.DealerHitsSoft17, rules.BlackjackPayout, rules.UseCounting, rules.UseTrueCount, rules.UseBetScaling)

	policy := ag.Policy()
	for _, slice := range report.Slices(policy) {
		if c.Count != nil && slice.Count != *c.Count {
			continue
		}
		if c.Bet != nil && slice.Bet != *c.Bet {
			continue
		}
		fmt.Print(report.PolicyChart(policy, slice))
	}
	return nil
}
