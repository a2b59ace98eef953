// Package trainer runs episodes of a table against a learning agent.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjackrl/internal/agent"
	"github.com/lox/blackjackrl/internal/statistics"
	"github.com/lox/blackjackrl/internal/table"
)

// ErrStepLimit is returned when an episode exceeds MaxStepsPerEpisode.
var ErrStepLimit = errors.New("trainer: episode exceeded step limit")

// Recorder consumes finished episodes. Recorders never influence play.
type Recorder interface {
	Record(statistics.EpisodeRecord) error
}

// Progress is emitted periodically during training.
type Progress struct {
	Label      string
	Episode    int
	Episodes   int
	LastReward float64
	LastSteps  int
	RecentAvg  float64
	Epsilon    float64
	QTableSize int
	Elapsed    time.Duration
}

// Fraction returns how much of the run has completed, in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Episodes <= 0 {
		return 1
	}
	return min(1, float64(p.Episode)/float64(p.Episodes))
}

// Rate returns episodes per second, or zero before any time has passed.
func (p Progress) Rate() float64 {
	if p.Elapsed <= 0 {
		return 0
	}
	return float64(p.Episode) / p.Elapsed.Seconds()
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(t *Trainer) {
		t.logger = logger
	}
}

// WithClock sets the clock used to measure elapsed time.
func WithClock(clock quartz.Clock) Option {
	return func(t *Trainer) {
		t.clock = clock
	}
}

// WithRecorders adds recorders that receive every training episode.
func WithRecorders(recorders ...Recorder) Option {
	return func(t *Trainer) {
		t.recorders = append(t.recorders, recorders...)
	}
}

// WithProgress sets the callback for progress updates.
func WithProgress(fn func(Progress)) Option {
	return func(t *Trainer) {
		t.progress = fn
	}
}

// WithLabel names the run in progress updates and logs.
func WithLabel(label string) Option {
	return func(t *Trainer) {
		t.label = label
	}
}

// Trainer drives one table and one agent. It is not safe for concurrent use.
type Trainer struct {
	cfg       Config
	table     *table.Table
	agent     *agent.Agent
	clock     quartz.Clock
	logger    *log.Logger
	recorders []Recorder
	progress  func(Progress)
	label     string
}

// New validates cfg and returns a trainer.
func New(cfg Config, tbl *table.Table, ag *agent.Agent, opts ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tbl == nil || ag == nil {
		return nil, errors.New("trainer: table and agent are required")
	}
	t := &Trainer{
		cfg:   cfg,
		table: tbl,
		agent: ag,
		clock: quartz.NewReal(),
		label: "default",
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = log.New(io.Discard)
	}
	t.logger = t.logger.WithPrefix(t.label)
	return t, nil
}

// Agent returns the agent being trained.
func (t *Trainer) Agent() *agent.Agent {
	return t.agent
}

// Table returns the table being played.
func (t *Trainer) Table() *table.Table {
	return t.table
}

// Train plays cfg.Episodes learning episodes, decaying epsilon after each one,
// and returns statistics over all of them.
func (t *Trainer) Train(ctx context.Context) (*statistics.Statistics, error) {
	stats := &statistics.Statistics{}
	window := statistics.NewRolling(t.cfg.Window)
	every := t.cfg.progressEvery()
	start := t.clock.Now()

	t.logger.Info("Training started", "episodes", t.cfg.Episodes, "epsilon", t.agent.Epsilon())

	var last statistics.EpisodeRecord
	for episode := 1; episode <= t.cfg.Episodes; episode++ {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		rec, err := t.playEpisode(episode, true)
		if err != nil {
			return stats, err
		}
		t.agent.DecayEpsilon()
		stats.Add(rec)
		window.Push(rec.TotalReward)
		last = rec

		for _, r := range t.recorders {
			if err := r.Record(rec); err != nil {
				return stats, fmt.Errorf("record episode %d: %w", episode, err)
			}
		}

		if t.cfg.CheckpointEvery > 0 && episode%t.cfg.CheckpointEvery == 0 {
			if err := t.checkpoint(); err != nil {
				return stats, err
			}
		}

		if episode%every == 0 && episode != t.cfg.Episodes {
			t.emit(t.snapshot(rec, window, start))
		}
	}

	final := t.snapshot(last, window, start)
	t.emit(final)
	if t.cfg.CheckpointPath != "" {
		if err := t.checkpoint(); err != nil {
			return stats, err
		}
	}
	t.logger.Info("Training finished",
		"episodes", stats.Episodes,
		"avg_reward", fmt.Sprintf("%.4f", stats.Mean()),
		"win_rate", fmt.Sprintf("%.2f%%", stats.WinRate()*100),
		"states", t.agent.Table().Len(),
		"elapsed", final.Elapsed.Round(time.Millisecond))
	return stats, nil
}

// Evaluate plays episodes greedily without learning. Exploration is restored
// afterwards, and recorders are not called.
func (t *Trainer) Evaluate(ctx context.Context, episodes int) (*statistics.Statistics, error) {
	restore := t.agent.Greedy()
	defer restore()

	stats := &statistics.Statistics{}
	for episode := 1; episode <= episodes; episode++ {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}
		rec, err := t.playEpisode(episode, false)
		if err != nil {
			return stats, err
		}
		stats.Add(rec)
	}
	t.logger.Info("Evaluation finished",
		"episodes", stats.Episodes,
		"avg_reward", fmt.Sprintf("%.4f", stats.Mean()),
		"win_rate", fmt.Sprintf("%.2f%%", stats.WinRate()*100),
		"profit_per_hour", fmt.Sprintf("%.2f", stats.Mean()*statistics.HandsPerHour))
	return stats, nil
}

// playEpisode runs one round from Reset to a terminal step.
func (t *Trainer) playEpisode(episode int, learn bool) (statistics.EpisodeRecord, error) {
	obs := t.table.Reset()
	var total float64
	steps := 0
	for {
		if steps >= t.cfg.MaxStepsPerEpisode {
			return statistics.EpisodeRecord{}, fmt.Errorf("episode %d: %w (%d)", episode, ErrStepLimit, steps)
		}
		action := t.agent.SelectAction(obs)
		res, err := t.table.Step(action)
		if err != nil {
			return statistics.EpisodeRecord{}, fmt.Errorf("episode %d: %w", episode, err)
		}
		if learn {
			t.agent.Update(obs, action, res.Reward, res.Observation, res.Done)
		}
		total += res.Reward
		steps++
		obs = res.Observation
		if res.Done {
			t.logger.Debug("Episode finished",
				"episode", episode,
				"reward", total,
				"steps", steps,
				"outcome", res.Info.Outcome)
			return statistics.NewRecord(episode, total, steps), nil
		}
	}
}

func (t *Trainer) snapshot(last statistics.EpisodeRecord, window *statistics.Rolling, start time.Time) Progress {
	return Progress{
		Label:      t.label,
		Episode:    last.Episode,
		Episodes:   t.cfg.Episodes,
		LastReward: last.TotalReward,
		LastSteps:  last.Steps,
		RecentAvg:  window.Mean(),
		Epsilon:    t.agent.Epsilon(),
		QTableSize: t.agent.Table().Len(),
		Elapsed:    t.clock.Now().Sub(start),
	}
}

func (t *Trainer) emit(p Progress) {
	t.logger.Debug("Training progress",
		"episode", p.Episode,
		"recent_avg", fmt.Sprintf("%+.4f", p.RecentAvg),
		"epsilon", fmt.Sprintf("%.4f", p.Epsilon),
		"states", p.QTableSize)
	if t.progress != nil {
		t.progress(p)
	}
}

func (t *Trainer) checkpoint() error {
	if err := t.agent.Save(t.cfg.CheckpointPath, t.table.Rules()); err != nil {
		return err
	}
	t.logger.Debug("Checkpoint written", "path", t.cfg.CheckpointPath, "episodes", t.agent.Episodes())
	return nil
}
