// Package scenario loads named training scenarios from HCL and runs them.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/blackjackrl/internal/agent"
	"github.com/lox/blackjackrl/internal/table"
)

const (
	defaultOutputDir    = "logs"
	defaultEvalEpisodes = 10000
)

// Config is a resolved scenario file.
type Config struct {
	OutputDir string
	Parallel  int
	Scenarios []Scenario
}

// Scenario is one training run with its rules and learning parameters.
type Scenario struct {
	Name            string
	Episodes        int
	EvalEpisodes    int
	CheckpointEvery int
	Seed            int64
	Rules           table.Rules
	Agent           agent.Config
}

// fileConfig mirrors the HCL layout. Pointer fields distinguish "unset" from
// an explicit zero or false.
type fileConfig struct {
	OutputDir string          `hcl:"output_dir,optional"`
	Parallel  int             `hcl:"parallel,optional"`
	Scenarios []scenarioBlock `hcl:"scenario,block"`
}

type scenarioBlock struct {
	Name            string      `hcl:"name,label"`
	Episodes        int         `hcl:"episodes"`
	EvalEpisodes    *int        `hcl:"eval_episodes,optional"`
	CheckpointEvery int         `hcl:"checkpoint_every,optional"`
	Seed            int64       `hcl:"seed,optional"`
	Rules           *rulesBlock `hcl:"rules,block"`
	Agent           *agentBlock `hcl:"agent,block"`
}

type rulesBlock struct {
	UseCounting            *bool    `hcl:"use_counting,optional"`
	DealerHitsSoft17       *bool    `hcl:"dealer_hits_soft_17,optional"`
	PayoutNum              *int     `hcl:"payout_num,optional"`
	PayoutDen              *int     `hcl:"payout_den,optional"`
	UseTrueCount           *bool    `hcl:"use_true_count,optional"`
	Decks                  *int     `hcl:"decks,optional"`
	UseBetScaling          *bool    `hcl:"use_bet_scaling,optional"`
	RewardShaping          *bool    `hcl:"reward_shaping,optional"`
	RestrictiveDouble      *bool    `hcl:"restrictive_double,optional"`
	PushToDealer           *bool    `hcl:"push_to_dealer,optional"`
	Penetration            *float64 `hcl:"penetration,optional"`
	RoundBoundaryReshuffle *bool    `hcl:"round_boundary_reshuffle,optional"`
}

type agentBlock struct {
	Alpha        *float64 `hcl:"alpha,optional"`
	Gamma        *float64 `hcl:"gamma,optional"`
	Epsilon      *float64 `hcl:"epsilon,optional"`
	EpsilonDecay *float64 `hcl:"epsilon_decay,optional"`
	EpsilonMin   *float64 `hcl:"epsilon_min,optional"`
}

// Defaults returns the five reference scenarios.
func Defaults() *Config {
	counting := table.DefaultRules()
	counting.UseCounting = true

	variant := counting
	variant.DealerHitsSoft17 = false
	variant.BlackjackPayout = table.Payout{Num: 3, Den: 2}

	trueCount := variant
	trueCount.UseTrueCount = true
	trueCount.Decks = 6

	enhanced := trueCount
	enhanced.UseBetScaling = true

	return &Config{
		OutputDir: defaultOutputDir,
		Parallel:  1,
		Scenarios: []Scenario{
			newScenario("basic_strategy", 50000, table.DefaultRules()),
			newScenario("counting_strategy", 75000, counting),
			newScenario("variant_strategy", 50000, variant),
			newScenario("true_count_strategy", 75000, trueCount),
			newScenario("enhanced_strategy", 100000, enhanced),
		},
	}
}

func newScenario(name string, episodes int, rules table.Rules) Scenario {
	cfg := agent.TrainingConfig()
	cfg.RestrictiveDouble = rules.RestrictiveDouble
	return Scenario{
		Name:         name,
		Episodes:     episodes,
		EvalEpisodes: defaultEvalEpisodes,
		Rules:        rules,
		Agent:        cfg,
	}
}

// Load reads a scenario file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Defaults(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := &Config{
		OutputDir: fc.OutputDir,
		Parallel:  fc.Parallel,
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaultOutputDir
	}
	if cfg.Parallel == 0 {
		cfg.Parallel = 1
	}
	for _, b := range fc.Scenarios {
		cfg.Scenarios = append(cfg.Scenarios, b.resolve())
	}
	if len(cfg.Scenarios) == 0 {
		cfg.Scenarios = Defaults().Scenarios
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (b scenarioBlock) resolve() Scenario {
	rules := table.DefaultRules()
	if r := b.Rules; r != nil {
		setBool(&rules.UseCounting, r.UseCounting)
		setBool(&rules.DealerHitsSoft17, r.DealerHitsSoft17)
		setBool(&rules.UseTrueCount, r.UseTrueCount)
		setBool(&rules.UseBetScaling, r.UseBetScaling)
		setBool(&rules.RewardShaping, r.RewardShaping)
		setBool(&rules.RestrictiveDouble, r.RestrictiveDouble)
		setBool(&rules.PushToDealer, r.PushToDealer)
		setBool(&rules.RoundBoundaryReshuffle, r.RoundBoundaryReshuffle)
		if r.PayoutNum != nil {
			rules.BlackjackPayout.Num = *r.PayoutNum
		}
		if r.PayoutDen != nil {
			rules.BlackjackPayout.Den = *r.PayoutDen
		}
		if r.Decks != nil {
			rules.Decks = *r.Decks
		}
		if r.Penetration != nil {
			rules.Penetration = *r.Penetration
		}
	}

	s := newScenario(b.Name, b.Episodes, rules)
	s.Seed = b.Seed
	s.CheckpointEvery = b.CheckpointEvery
	if b.EvalEpisodes != nil {
		s.EvalEpisodes = *b.EvalEpisodes
	}
	if a := b.Agent; a != nil {
		setFloat(&s.Agent.Alpha, a.Alpha)
		setFloat(&s.Agent.Gamma, a.Gamma)
		setFloat(&s.Agent.Epsilon, a.Epsilon)
		setFloat(&s.Agent.EpsilonDecay, a.EpsilonDecay)
		setFloat(&s.Agent.EpsilonMin, a.EpsilonMin)
	}
	return s
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks every scenario and rejects duplicate names.
func (c *Config) Validate() error {
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1 (got %d)", c.Parallel)
	}
	if len(c.Scenarios) == 0 {
		return errors.New("no scenarios configured")
	}
	seen := make(map[string]bool, len(c.Scenarios))
	for _, s := range c.Scenarios {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate scenario %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// Validate checks the scenario's settings.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario name is required")
	}
	if s.Episodes <= 0 {
		return fmt.Errorf("scenario %q: episodes must be positive (got %d)", s.Name, s.Episodes)
	}
	if s.EvalEpisodes < 0 {
		return fmt.Errorf("scenario %q: eval_episodes must be non-negative (got %d)", s.Name, s.EvalEpisodes)
	}
	if s.CheckpointEvery < 0 {
		return fmt.Errorf("scenario %q: checkpoint_every must be non-negative (got %d)", s.Name, s.CheckpointEvery)
	}
	if err := s.Rules.Validate(); err != nil {
		return fmt.Errorf("scenario %q rules: %w", s.Name, err)
	}
	if err := s.Agent.Validate(); err != nil {
		return fmt.Errorf("scenario %q agent: %w", s.Name, err)
	}
	return nil
}

// Find returns the scenario with the given name.
func (c *Config) Find(name string) (Scenario, bool) {
	for _, s := range c.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// Select narrows the config to the named scenarios, in the order given.
func (c *Config) Select(names ...string) (*Config, error) {
	if len(names) == 0 {
		return c, nil
	}
	out := &Config{OutputDir: c.OutputDir, Parallel: c.Parallel}
	for _, name := range names {
		s, ok := c.Find(name)
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", name)
		}
		out.Scenarios = append(out.Scenarios, s)
	}
	return out, nil
}
