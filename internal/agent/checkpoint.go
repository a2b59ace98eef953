package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjackrl/internal/fileutil"
	"github.com/lox/blackjackrl/internal/table"
)

const checkpointFileVersion = 1

// ErrUnsupportedVersion is returned for checkpoints written by a newer format.
var ErrUnsupportedVersion = errors.New("agent: unsupported checkpoint version")

// Checkpoint is the persisted form of an agent. Table values are written as-is;
// encoding/json emits the shortest representation that parses back to the
// same float64, so a save/load round trip is exact.
type Checkpoint struct {
	Version  int               `json:"version"`
	SavedAt  time.Time         `json:"saved_at"`
	Config   Config            `json:"config"`
	Epsilon  float64           `json:"epsilon"`
	Episodes int               `json:"episodes"`
	Updates  int64             `json:"updates"`
	Rules    table.Rules       `json:"rules"`
	Table    map[string]Values `json:"table"`
}

// Checkpoint captures the agent state together with the rules it was trained on.
func (a *Agent) Checkpoint(rules table.Rules) *Checkpoint {
	return &Checkpoint{
		Version:  checkpointFileVersion,
		SavedAt:  time.Now().UTC(),
		Config:   a.cfg,
		Epsilon:  a.epsilon,
		Episodes: a.episodes,
		Updates:  a.updates,
		Rules:    rules,
		Table:    a.qtable.Snapshot(),
	}
}

// Encode writes the checkpoint as indented JSON.
func (c *Checkpoint) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	return nil
}

// DecodeCheckpoint reads and validates a checkpoint.
func DecodeCheckpoint(r io.Reader) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	if c.Version != checkpointFileVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, c.Version)
	}
	if err := c.Config.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint config invalid: %w", err)
	}
	if err := c.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint rules invalid: %w", err)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return nil, fmt.Errorf("checkpoint epsilon %v out of range", c.Epsilon)
	}
	return &c, nil
}

// Restore rebuilds an agent from a checkpoint. Exploration resumes from the
// saved epsilon with a fresh random stream derived from the saved seed.
func Restore(c *Checkpoint, logger *log.Logger) (*Agent, error) {
	q, err := restoreQTable(c.Table)
	if err != nil {
		return nil, fmt.Errorf("restore table: %w", err)
	}
	a, err := New(c.Config, logger)
	if err != nil {
		return nil, err
	}
	a.qtable = q
	a.epsilon = c.Epsilon
	a.episodes = c.Episodes
	a.updates = c.Updates
	return a, nil
}

// Save atomically writes the agent to path.
func (a *Agent) Save(path string, rules table.Rules) error {
	if path == "" {
		return errors.New("destination path is required")
	}
	ckpt := a.Checkpoint(rules)
	if err := fileutil.WriteAtomic(path, 0o644, ckpt.Encode); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	a.logger.Debug("Saved checkpoint", "path", path, "states", len(ckpt.Table))
	return nil
}

// Load reads an agent and the rules it was trained on from path.
func Load(path string, logger *log.Logger) (*Agent, table.Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, table.Rules{}, err
	}
	defer f.Close()

	ckpt, err := DecodeCheckpoint(f)
	if err != nil {
		return nil, table.Rules{}, fmt.Errorf("%s: %w", path, err)
	}
	a, err := Restore(ckpt, logger)
	if err != nil {
		return nil, table.Rules{}, fmt.Errorf("%s: %w", path, err)
	}
	return a, ckpt.Rules, nil
}
