package table

import "fmt"

// Observation is the read-only view of a round handed to the agent. Fields
// beyond the first three are zero unless the matching rule is enabled.
type Observation struct {
	PlayerTotal  int
	DealerUpcard int
	UsableAce    bool

	// CountBucket is the rounded count clamped to [-5, 5] when counting is on.
	CountBucket int

	// Bet is the active wager in units when bet scaling is on.
	Bet int

	// CanDouble is true before the player's first action. It tells the agent
	// which actions are legal and is not part of the learned state.
	CanDouble bool
}

func (o Observation) String() string {
	soft := "hard"
	if o.UsableAce {
		soft = "soft"
	}
	return fmt.Sprintf("%s %d vs %d (count %+d, bet %d)", soft, o.PlayerTotal, o.DealerUpcard, o.CountBucket, o.Bet)
}

// Info carries side information about a step. Its shape is fixed regardless
// of configuration.
type Info struct {
	// Bet is the wager the reward was settled on, doubled when the player doubled.
	Bet          int
	Outcome      Outcome
	Doubled      bool
	PlayerTotal  int
	DealerTotal  int
	DealerCards  int
	RunningCount int
	TrueCount    float64
}

// StepResult is returned by Table.Step.
type StepResult struct {
	Observation Observation
	Reward      float64
	Done        bool
	Info        Info
}
