package scenario

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjackrl/internal/agent"
	"github.com/lox/blackjackrl/internal/episodelog"
	"github.com/lox/blackjackrl/internal/randutil"
	"github.com/lox/blackjackrl/internal/statistics"
	"github.com/lox/blackjackrl/internal/table"
	"github.com/lox/blackjackrl/internal/trainer"
)

// Result is the outcome of one scenario.
type Result struct {
	Scenario       Scenario
	Seed           int64
	Train          statistics.Summary
	Eval           statistics.Summary
	LogPath        string
	CheckpointPath string
	Agent          *agent.Agent
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithClock sets the clock used for log names and elapsed times.
func WithClock(clock quartz.Clock) Option {
	return func(r *Runner) {
		r.clock = clock
	}
}

// WithProgress sets a progress callback. It is called from every worker and
// must be safe for concurrent use.
func WithProgress(fn func(trainer.Progress)) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// Runner trains scenarios, several at a time when Parallel > 1. Each scenario
// gets its own shoe, table and agent.
type Runner struct {
	cfg      *Config
	logger   *log.Logger
	clock    quartz.Clock
	progress func(trainer.Progress)
}

// NewRunner validates cfg and returns a runner.
func NewRunner(cfg *Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{cfg: cfg, clock: quartz.NewReal()}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r, nil
}

// Run trains every scenario and returns results in config order. The first
// error cancels the remaining scenarios.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, len(r.cfg.Scenarios))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallel)
	for i, s := range r.cfg.Scenarios {
		g.Go(func() error {
			res, err := r.RunScenario(ctx, s)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", s.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunScenario trains one scenario, writes its episode log and checkpoint into
// the output directory, then evaluates the learned policy greedily.
func (r *Runner) RunScenario(ctx context.Context, s Scenario) (Result, error) {
	logger := r.logger.WithPrefix(s.Name)
	seed := randutil.Resolve(s.Seed)

	tbl, err := table.NewTable(s.Rules, randutil.New(randutil.Derive(seed, 0)), logger)
	if err != nil {
		return Result{}, err
	}
	agentCfg := s.Agent
	agentCfg.Seed = randutil.Derive(seed, 1)
	ag, err := agent.New(agentCfg, logger)
	if err != nil {
		return Result{}, err
	}

	res := Result{Scenario: s, Seed: seed, Agent: ag}

	tcfg := trainer.DefaultConfig(s.Episodes)
	tcfg.CheckpointEvery = s.CheckpointEvery
	opts := []trainer.Option{
		trainer.WithLogger(r.logger),
		trainer.WithClock(r.clock),
		trainer.WithLabel(s.Name),
		trainer.WithProgress(r.progress),
	}

	var episodes *episodelog.Writer
	if r.cfg.OutputDir != "" {
		res.CheckpointPath = filepath.Join(r.cfg.OutputDir, s.Name+"_qtable.json")
		tcfg.CheckpointPath = res.CheckpointPath

		w, err := episodelog.Create(r.cfg.OutputDir, s.Name, r.clock.Now())
		if err != nil {
			return Result{}, err
		}
		defer w.Close()
		episodes = w
		res.LogPath = w.Path()
		opts = append(opts, trainer.WithRecorders(w))
	}

	tr, err := trainer.New(tcfg, tbl, ag, opts...)
	if err != nil {
		return Result{}, err
	}

	logger.Info("Scenario started", "episodes", s.Episodes, "seed", seed, "decks", s.Rules.Decks, "counting", s.Rules.UseCounting)
	trainStats, err := tr.Train(ctx)
	if err != nil {
		return Result{}, err
	}
	if err := trainStats.Validate(); err != nil {
		return Result{}, fmt.Errorf("training statistics: %w", err)
	}
	res.Train = trainStats.Summary(s.Name, ag.Table().Len())
	if episodes != nil {
		if err := episodes.Flush(); err != nil {
			return Result{}, fmt.Errorf("flush episode log: %w", err)
		}
	}

	if s.EvalEpisodes > 0 {
		evalStats, err := tr.Evaluate(ctx, s.EvalEpisodes)
		if err != nil {
			return Result{}, err
		}
		if err := evalStats.Validate(); err != nil {
			return Result{}, fmt.Errorf("evaluation statistics: %w", err)
		}
		res.Eval = evalStats.Summary(s.Name+" (eval)", ag.Table().Len())
	}
	return res, nil
}
