// Package agent implements a tabular Q-learning player for the blackjack table.
package agent

import (
	"io"
	"math"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjackrl/internal/randutil"
	"github.com/lox/blackjackrl/internal/table"
)

// Agent learns action values with one-step Q-learning and explores
// epsilon-greedily. It is not safe for concurrent use.
type Agent struct {
	cfg      Config
	epsilon  float64
	qtable   *QTable
	rng      *rand.Rand
	logger   *log.Logger
	episodes int
	updates  int64
}

// New validates cfg and returns an agent with an empty Q-table.
func New(cfg Config, logger *log.Logger) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cfg.Seed = randutil.Resolve(cfg.Seed)
	return &Agent{
		cfg:     cfg,
		epsilon: cfg.Epsilon,
		qtable:  NewQTable(),
		rng:     randutil.New(cfg.Seed),
		logger:  logger.WithPrefix("agent"),
	}, nil
}

// ValidActions lists the legal actions for obs in index order. Stand and Hit
// are always legal; Double only on the first decision (and, when restricted,
// only on 9 to 11).
func (a *Agent) ValidActions(obs table.Observation) []table.Action {
	actions := []table.Action{table.Stand, table.Hit}
	if obs.CanDouble && (!a.cfg.RestrictiveDouble || (obs.PlayerTotal >= 9 && obs.PlayerTotal <= 11)) {
		actions = append(actions, table.Double)
	}
	return actions
}

// SelectAction picks a uniformly random legal action with probability epsilon
// and the greedy action otherwise.
func (a *Agent) SelectAction(obs table.Observation) table.Action {
	valid := a.ValidActions(obs)
	if a.epsilon > 0 && a.rng.Float64() < a.epsilon {
		return valid[a.rng.IntN(len(valid))]
	}
	return a.best(a.qtable.Row(KeyOf(obs)), valid)
}

// best returns the highest valued action, keeping the first one on ties.
func (a *Agent) best(row *Values, valid []table.Action) table.Action {
	bestAction := valid[0]
	bestValue := math.Inf(-1)
	for _, act := range valid {
		if row[act] > bestValue {
			bestValue = row[act]
			bestAction = act
		}
	}
	return bestAction
}

func (a *Agent) maxValue(row *Values, valid []table.Action) float64 {
	return row[a.best(row, valid)]
}

// Update applies Q[s][a] += alpha * (r + gamma * max Q[s'] - Q[s][a]). The
// continuation term is zero when done. Out-of-range actions are ignored.
func (a *Agent) Update(obs table.Observation, action table.Action, reward float64, next table.Observation, done bool) {
	if !action.Valid() {
		a.logger.Warn("Ignoring update for unknown action", "action", int(action))
		return
	}

	row := a.qtable.Row(KeyOf(obs))
	target := reward
	if !done {
		nextRow := a.qtable.Row(KeyOf(next))
		target += a.cfg.Gamma * a.maxValue(nextRow, a.ValidActions(next))
	}
	row[action] += a.cfg.Alpha * (target - row[action])
	a.updates++
}

// DecayEpsilon is called once per finished episode.
func (a *Agent) DecayEpsilon() {
	a.episodes++
	a.epsilon = math.Max(a.cfg.EpsilonMin, a.epsilon*a.cfg.EpsilonDecay)
}

// Greedy disables exploration until the returned restore func is called.
func (a *Agent) Greedy() (restore func()) {
	saved := a.epsilon
	a.epsilon = 0
	return func() { a.epsilon = saved }
}

// Epsilon returns the current exploration rate.
func (a *Agent) Epsilon() float64 {
	return a.epsilon
}

// Episodes returns the number of decay steps taken.
func (a *Agent) Episodes() int {
	return a.episodes
}

// Updates returns the number of Q-value updates applied.
func (a *Agent) Updates() int64 {
	return a.updates
}

// Table returns the agent's Q-table.
func (a *Agent) Table() *QTable {
	return a.qtable
}

// Config returns the agent configuration, with the seed resolved.
func (a *Agent) Config() Config {
	return a.cfg
}

// Policy returns the greedy first-decision action for every visited state.
// Double is considered legal wherever the agent's rules allow it.
func (a *Agent) Policy() map[StateKey]table.Action {
	out := make(map[StateKey]table.Action, a.qtable.Len())
	for key, row := range a.qtable.rows {
		obs := table.Observation{
			PlayerTotal:  key.PlayerTotal,
			DealerUpcard: key.DealerUpcard,
			UsableAce:    key.UsableAce,
			CountBucket:  key.Count,
			Bet:          key.Bet,
			CanDouble:    true,
		}
		out[key] = a.best(row, a.ValidActions(obs))
	}
	return out
}
