package agent

import (
	"errors"
	"fmt"
)

// Config holds the learning hyper-parameters.
type Config struct {
	// Alpha is the learning rate.
	Alpha float64 `json:"alpha"`

	// Gamma discounts the value of the next state.
	Gamma float64 `json:"gamma"`

	// Epsilon is the initial exploration rate.
	Epsilon float64 `json:"epsilon"`

	// EpsilonDecay multiplies epsilon after every finished episode.
	EpsilonDecay float64 `json:"epsilon_decay"`

	// EpsilonMin is the exploration floor.
	EpsilonMin float64 `json:"epsilon_min"`

	// RestrictiveDouble mirrors the table rule so that Double is only offered
	// on totals of 9 to 11.
	RestrictiveDouble bool `json:"restrictive_double"`

	// Seed drives exploration. Zero picks a time-based seed.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns conservative defaults.
func DefaultConfig() Config {
	return Config{
		Alpha:        0.1,
		Gamma:        0.9,
		Epsilon:      1.0,
		EpsilonDecay: 0.9995,
		EpsilonMin:   0.05,
	}
}

// TrainingConfig returns the slower-decaying parameters used for long runs.
func TrainingConfig() Config {
	return Config{
		Alpha:        0.05,
		Gamma:        0.95,
		Epsilon:      1.0,
		EpsilonDecay: 0.9999,
		EpsilonMin:   0.01,
	}
}

// Validate ensures every parameter is in range.
func (c Config) Validate() error {
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0,1] (got %v)", c.Alpha)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0,1] (got %v)", c.Gamma)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0,1] (got %v)", c.Epsilon)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("epsilon decay must be in (0,1] (got %v)", c.EpsilonDecay)
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > 1 {
		return fmt.Errorf("epsilon min must be in [0,1] (got %v)", c.EpsilonMin)
	}
	if c.EpsilonMin > c.Epsilon {
		return errors.New("epsilon min cannot exceed epsilon")
	}
	return nil
}
