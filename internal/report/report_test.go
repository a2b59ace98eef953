package report

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjackrl/internal/agent"
	"github.com/lox/blackjackrl/internal/statistics"
	"github.com/lox/blackjackrl/internal/table"
)

func TestMain(m *testing.M) {
	DisableColor()
	os.Exit(m.Run())
}

func TestSummaryTable(t *testing.T) {
	out := SummaryTable([]statistics.Summary{
		{Label: "basic_strategy", Episodes: 50000, AvgReward: -0.0412, WinRate: 0.4321, PushRate: 0.08, ProfitPerHour: -4.12, QTableSize: 280},
		{Label: "enhanced_strategy", Episodes: 100000, AvgReward: 0.0123, WinRate: 0.45, ProfitPerHour: 1.23, QTableSize: 9001},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Scenario")
	assert.Contains(t, lines[0], "Profit/Hour")
	assert.Contains(t, lines[1], "basic_strategy")
	assert.Contains(t, lines[1], "-0.0412")
	assert.Contains(t, lines[1], "43.21")
	assert.Contains(t, lines[1], "-4.12")
	assert.Contains(t, lines[2], "+0.0123")
	assert.Contains(t, lines[2], "9001")
	assert.Equal(t, len(lines[0]), len(lines[1]), "columns are fixed width")
}

func TestTrainingSummaryAndEvaluation(t *testing.T) {
	s := statistics.Summary{Label: "x", Episodes: 10000, AvgReward: 0.05, WinRate: 0.5, PushRate: 0.1, LossRate: 0.4, ProfitPerHour: 5, QTableSize: 12}

	line := TrainingSummary(s)
	assert.Contains(t, line, "Episodes: 10000")
	assert.Contains(t, line, "Avg Reward: 0.050")
	assert.Contains(t, line, "Win Rate: 50.00%")

	eval := Evaluation(s)
	assert.Contains(t, eval, "Evaluation Results (10000 episodes)")
	assert.Contains(t, eval, "Expected Profit/Hour: $5.00")
	assert.Contains(t, eval, "Push Rate: 10.00%")
}

func TestBanner(t *testing.T) {
	assert.Contains(t, Banner("Training Started: basic"), "Training Started: basic")
	assert.Contains(t, Completed("basic"), "Completed: basic")
}

func TestPolicyChart(t *testing.T) {
	policy := map[agent.StateKey]table.Action{
		{PlayerTotal: 11, DealerUpcard: 6}:                  table.Double,
		{PlayerTotal: 16, DealerUpcard: 10}:                 table.Hit,
		{PlayerTotal: 20, DealerUpcard: 1}:                  table.Stand,
		{PlayerTotal: 18, DealerUpcard: 9, UsableAce: true}: table.Hit,
		{PlayerTotal: 12, DealerUpcard: 4, Count: 2}:        table.Stand,
	}
	out := PolicyChart(policy, PolicySlice{})
	lines := strings.Split(out, "\n")

	find := func(label string) string {
		for _, l := range lines {
			if strings.HasPrefix(l, label) {
				return l
			}
		}
		t.Fatalf("no row %q in chart:\n%s", label, out)
		return ""
	}

	// Cells follow the label in upcard order 2..10, A.
	cells := func(row string) []string {
		return strings.Fields(row[8:])
	}

	hard11 := cells(find("hard 11"))
	require.Len(t, hard11, 10)
	assert.Equal(t, "D", hard11[4])
	assert.Equal(t, ".", hard11[0])

	hard16 := cells(find("hard 16"))
	assert.Equal(t, "H", hard16[8])

	hard20 := cells(find("hard 20"))
	assert.Equal(t, "S", hard20[9])

	soft18 := cells(find("soft 18"))
	assert.Equal(t, "H", soft18[7])

	hard12 := cells(find("hard 12"))
	assert.Equal(t, ".", hard12[2], "other count slices are not drawn")

	assert.Contains(t, out, "count +0, bet 0")
}

func TestSlices(t *testing.T) {
	policy := map[agent.StateKey]table.Action{
		{PlayerTotal: 12, Count: 2, Bet: 3}:  table.Hit,
		{PlayerTotal: 13, Count: -1, Bet: 1}: table.Hit,
		{PlayerTotal: 14, Count: 2, Bet: 1}:  table.Hit,
		{PlayerTotal: 15, Count: 2, Bet: 3}:  table.Stand,
	}
	assert.Equal(t, []PolicySlice{{-1, 1}, {2, 1}, {2, 3}}, Slices(policy))
}
