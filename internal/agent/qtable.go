package agent

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lox/blackjackrl/internal/table"
)

// StateKey is the discretised observation the agent learns over. Count and Bet
// stay zero unless the table exposes them.
type StateKey struct {
	PlayerTotal  int
	DealerUpcard int
	UsableAce    bool
	Count        int
	Bet          int
}

// KeyOf derives the state key for an observation.
func KeyOf(obs table.Observation) StateKey {
	return StateKey{
		PlayerTotal:  obs.PlayerTotal,
		DealerUpcard: obs.DealerUpcard,
		UsableAce:    obs.UsableAce,
		Count:        obs.CountBucket,
		Bet:          obs.Bet,
	}
}

func (k StateKey) String() string {
	ace := 0
	if k.UsableAce {
		ace = 1
	}
	return fmt.Sprintf("%d/%d/%d/%d/%d", k.PlayerTotal, k.DealerUpcard, ace, k.Count, k.Bet)
}

// ParseStateKey is the inverse of StateKey.String.
func ParseStateKey(s string) (StateKey, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 5 {
		return StateKey{}, fmt.Errorf("state key %q: want 5 fields, got %d", s, len(parts))
	}
	var n [5]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return StateKey{}, fmt.Errorf("state key %q: field %d: %w", s, i, err)
		}
		n[i] = v
	}
	if n[2] != 0 && n[2] != 1 {
		return StateKey{}, fmt.Errorf("state key %q: usable ace must be 0 or 1", s)
	}
	return StateKey{
		PlayerTotal:  n[0],
		DealerUpcard: n[1],
		UsableAce:    n[2] == 1,
		Count:        n[3],
		Bet:          n[4],
	}, nil
}

// Values holds one action-value per action, indexed by table.Action.
type Values [table.NumActions]float64

// QTable is a sparse map from state to action values. Rows are created on first
// access and zero-filled.
type QTable struct {
	rows map[StateKey]*Values
}

// NewQTable returns an empty table.
func NewQTable() *QTable {
	return &QTable{rows: make(map[StateKey]*Values)}
}

// Row returns the row for key, inserting a zero row on first visit.
func (q *QTable) Row(key StateKey) *Values {
	row, ok := q.rows[key]
	if !ok {
		row = &Values{}
		q.rows[key] = row
	}
	return row
}

// Lookup returns a copy of the row for key without inserting it.
func (q *QTable) Lookup(key StateKey) (Values, bool) {
	row, ok := q.rows[key]
	if !ok {
		return Values{}, false
	}
	return *row, true
}

// Len returns the number of visited states.
func (q *QTable) Len() int {
	return len(q.rows)
}

// Keys returns every state key in a stable order.
func (q *QTable) Keys() []StateKey {
	keys := make([]StateKey, 0, len(q.rows))
	for k := range q.rows {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// Snapshot copies the table into its serialised form.
func (q *QTable) Snapshot() map[string]Values {
	out := make(map[string]Values, len(q.rows))
	for k, row := range q.rows {
		out[k.String()] = *row
	}
	return out
}

// Equal reports whether both tables hold identical keys and values.
func (q *QTable) Equal(other *QTable) bool {
	if q.Len() != other.Len() {
		return false
	}
	for k, row := range q.rows {
		o, ok := other.rows[k]
		if !ok || *o != *row {
			return false
		}
	}
	return true
}

func restoreQTable(snap map[string]Values) (*QTable, error) {
	q := NewQTable()
	for s, row := range snap {
		key, err := ParseStateKey(s)
		if err != nil {
			return nil, err
		}
		if _, dup := q.rows[key]; dup {
			return nil, fmt.Errorf("duplicate state key %q", s)
		}
		v := row
		q.rows[key] = &v
	}
	return q, nil
}

func compareKeys(a, b StateKey) int {
	if a.UsableAce != b.UsableAce {
		if !a.UsableAce {
			return -1
		}
		return 1
	}
	for _, d := range [...]int{
		a.Count - b.Count,
		a.Bet - b.Bet,
		a.PlayerTotal - b.PlayerTotal,
		a.DealerUpcard - b.DealerUpcard,
	} {
		if d != 0 {
			return d
		}
	}
	return 0
}
