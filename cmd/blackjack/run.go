package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjackrl/internal/report"
	"github.com/lox/blackjackrl/internal/scenario"
	"github.com/lox/blackjackrl/internal/statistics"
	"github.com/lox/blackjackrl/internal/trainer"
	"github.com/lox/blackjackrl/internal/tui"
)

// ScenarioFlags are shared by train and run.
type ScenarioFlags struct {
	Config          string `short:"c" default:"scenarios.hcl" help:"Path to HCL scenario file (defaults are used if missing)"`
	OutputDir       string `help:"Directory for episode logs and Q-tables (overrides config)"`
	Episodes        int    `help:"Training episodes per scenario (overrides config)"`
	EvalEpisodes    int    `name:"eval-episodes" default:"-1" help:"Greedy evaluation episodes (overrides config when >= 0)"`
	Seed            int64  `help:"Random seed; 0 keeps the config seed (or a time seed)"`
	CheckpointEvery int    `help:"Write the Q-table every N episodes (overrides config)"`
}

func (f ScenarioFlags) load(names ...string) (*scenario.Config, error) {
	cfg, err := scenario.Load(f.Config)
	if err != nil {
		return nil, err
	}
	cfg, err = cfg.Select(names...)
	if err != nil {
		return nil, err
	}
	if f.OutputDir != "" {
		cfg.OutputDir = f.OutputDir
	}
	for i := range cfg.Scenarios {
		s := &cfg.Scenarios[i]
		if f.Episodes > 0 {
			s.Episodes = f.Episodes
		}
		if f.EvalEpisodes >= 0 {
			s.EvalEpisodes = f.EvalEpisodes
		}
		if f.Seed != 0 {
			s.Seed = f.Seed
		}
		if f.CheckpointEvery > 0 {
			s.CheckpointEvery = f.CheckpointEvery
		}
	}
	return cfg, cfg.Validate()
}

type TrainCmd struct {
	ScenarioFlags `embed:""`

	Scenario string `arg:"" optional:"" default:"basic_strategy" help:"Scenario name"`
	Policy   bool   `help:"Print the learned policy chart after training"`
}

func (c *TrainCmd) Run(ctx context.Context, logger *log.Logger) error {
	cfg, err := c.load(c.Scenario)
	if err != nil {
		return err
	}
	cfg.Parallel = 1
	s := cfg.Scenarios[0]

	fmt.Println(report.Banner("Training Started: " + s.Name))
	runner, err := scenario.NewRunner(cfg,
		scenario.WithLogger(logger),
		scenario.WithProgress(func(p trainer.Progress) {
			logger.Info("Progress",
				"scenario", p.Label,
				"episode", p.Episode,
				"recent_avg", fmt.Sprintf("%+.4f", p.RecentAvg),
				"epsilon", fmt.Sprintf("%.4f", p.Epsilon),
				"states", p.QTableSize)
		}))
	if err != nil {
		return err
	}
	res, err := runner.RunScenario(ctx, s)
	if err != nil {
		return err
	}

	fmt.Println(report.Completed(s.Name))
	fmt.Println(report.TrainingSummary(res.Train))
	if res.Eval.Episodes > 0 {
		fmt.Print(report.Evaluation(res.Eval))
	}
	if res.CheckpointPath != "" {
		logger.Info("Saved Q-table", "path", res.CheckpointPath, "log", res.LogPath)
	}
	if c.Policy {
		policy := res.Agent.Policy()
		for _, slice := range report.Slices(policy) {
			fmt.Print(report.PolicyChart(policy, slice))
		}
	}
	return nil
}

type RunCmd struct {
	ScenarioFlags `embed:""`

	Scenarios []string `arg:"" optional:"" help:"Scenario names to run (all when omitted)"`
	Parallel  int      `short:"p" help:"Scenarios to train at once (overrides config)"`
	TUI       bool     `name:"tui" help:"Show a live dashboard instead of log lines"`
}

func (c *RunCmd) Run(ctx context.Context, logger *log.Logger) error {
	cfg, err := c.load(c.Scenarios...)
	if err != nil {
		return err
	}
	if c.Parallel > 0 {
		cfg.Parallel = c.Parallel
	}

	var results []scenario.Result
	if c.TUI {
		results, err = c.runWithDashboard(ctx, cfg, logger)
	} else {
		results, err = c.runWithLogs(ctx, cfg, logger)
	}
	if err != nil {
		return err
	}

	train := make([]statistics.Summary, 0, len(results))
	eval := make([]statistics.Summary, 0, len(results))
	for _, r := range results {
		train = append(train, r.Train)
		if r.Eval.Episodes > 0 {
			eval = append(eval, r.Eval)
		}
	}
	fmt.Println(report.Banner("Training"))
	fmt.Println(report.SummaryTable(train))
	if len(eval) > 0 {
		fmt.Println()
		fmt.Println(report.Banner("Greedy evaluation"))
		fmt.Println(report.SummaryTable(eval))
	}
	return nil
}

func (c *RunCmd) runWithLogs(ctx context.Context, cfg *scenario.Config, logger *log.Logger) ([]scenario.Result, error) {
	runner, err := scenario.NewRunner(cfg,
		scenario.WithLogger(logger),
		scenario.WithProgress(func(p trainer.Progress) {
			logger.Info("Progress",
				"scenario", p.Label,
				"episode", fmt.Sprintf("%d/%d", p.Episode, p.Episodes),
				"recent_avg", fmt.Sprintf("%+.4f", p.RecentAvg),
				"epsilon", fmt.Sprintf("%.4f", p.Epsilon))
		}))
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx)
}

func (c *RunCmd) runWithDashboard(ctx context.Context, cfg *scenario.Config, logger *log.Logger) ([]scenario.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	labels := make([]string, 0, len(cfg.Scenarios))
	for _, s := range cfg.Scenarios {
		labels = append(labels, s.Name)
	}
	model := tui.New(labels, cancel)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	// Log lines would tear the dashboard, so only warnings get through.
	quiet := logger.With()
	quiet.SetLevel(log.WarnLevel)

	runner, err := scenario.NewRunner(cfg,
		scenario.WithLogger(quiet),
		scenario.WithProgress(tui.Forward(program)))
	if err != nil {
		return nil, err
	}

	var (
		results []scenario.Result
		runErr  error
	)
	go func() {
		results, runErr = runner.Run(ctx)
		program.Send(tui.DoneMsg{Err: runErr})
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if !model.Done() {
		return nil, context.Canceled
	}
	return results, runErr
}
