package trainer

import (
	"errors"
	"fmt"
)

// Config controls an episode loop.
type Config struct {
	// Episodes is the number of training episodes to play.
	Episodes int

	// MaxStepsPerEpisode aborts an episode that has not finished after this
	// many steps. A blackjack round can never legitimately need more than a
	// dozen.
	MaxStepsPerEpisode int

	// ProgressEvery emits a progress update every N episodes. Zero means one
	// update per percent of Episodes.
	ProgressEvery int

	// Window is the number of recent episodes averaged in progress updates.
	Window int

	// CheckpointPath, when set, receives the agent every CheckpointEvery
	// episodes and once more at the end of training.
	CheckpointPath  string
	CheckpointEvery int
}

// DefaultConfig returns settings for a run of the given length.
func DefaultConfig(episodes int) Config {
	return Config{
		Episodes:           episodes,
		MaxStepsPerEpisode: 100,
		Window:             1000,
	}
}

// Validate checks the loop settings.
func (c Config) Validate() error {
	if c.Episodes < 0 {
		return fmt.Errorf("episodes must be non-negative (got %d)", c.Episodes)
	}
	if c.MaxStepsPerEpisode <= 0 {
		return fmt.Errorf("max steps per episode must be positive (got %d)", c.MaxStepsPerEpisode)
	}
	if c.ProgressEvery < 0 {
		return fmt.Errorf("progress interval must be non-negative (got %d)", c.ProgressEvery)
	}
	if c.CheckpointEvery < 0 {
		return fmt.Errorf("checkpoint interval must be non-negative (got %d)", c.CheckpointEvery)
	}
	if c.CheckpointEvery > 0 && c.CheckpointPath == "" {
		return errors.New("checkpoint interval set without a checkpoint path")
	}
	return nil
}

func (c Config) progressEvery() int {
	if c.ProgressEvery > 0 {
		return c.ProgressEvery
	}
	return max(1, c.Episodes/100)
}
