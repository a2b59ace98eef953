package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/blackjackrl/internal/agent"
	"github.com/lox/blackjackrl/internal/table"
)

// Upcards lists dealer upcards in chart column order, ace last.
var Upcards = []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 1}

// PolicySlice selects which count and bet the chart is drawn for. Agents
// trained without counting or bet scaling only have the zero slice.
type PolicySlice struct {
	Count int
	Bet   int
}

// PolicyChart draws the greedy action for hard totals 5 to 20 and soft totals
// 13 to 20 against every upcard. Unvisited states are shown as a dot.
func PolicyChart(policy map[agent.StateKey]table.Action, slice PolicySlice) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Learned policy (count %+d, bet %d)", slice.Count, slice.Bet)))
	b.WriteString("\n")
	b.WriteString(chartHeader())
	for total := 5; total <= 20; total++ {
		b.WriteString(chartRow(policy, slice, total, false))
	}
	for total := 13; total <= 20; total++ {
		b.WriteString(chartRow(policy, slice, total, true))
	}
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%s stand  %s hit  %s double  . unvisited",
		actionCell(table.Stand), actionCell(table.Hit), actionCell(table.Double))))
	b.WriteString("\n")
	return b.String()
}

// Slices returns every count/bet combination present in policy, sorted.
func Slices(policy map[agent.StateKey]table.Action) []PolicySlice {
	seen := map[PolicySlice]bool{}
	var out []PolicySlice
	for k := range policy {
		s := PolicySlice{Count: k.Count, Bet: k.Bet}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b PolicySlice) int {
		if a.Count != b.Count {
			return a.Count - b.Count
		}
		return a.Bet - b.Bet
	})
	return out
}

var labelCell = lipgloss.NewStyle().Width(8)

func chartHeader() string {
	var b strings.Builder
	b.WriteString(labelCell.Render(""))
	for _, up := range Upcards {
		b.WriteString(" ")
		b.WriteString(HeaderStyle.Render(upcardLabel(up)))
	}
	b.WriteString("\n")
	return b.String()
}

func chartRow(policy map[agent.StateKey]table.Action, slice PolicySlice, total int, soft bool) string {
	label := fmt.Sprintf("hard %d", total)
	if soft {
		label = fmt.Sprintf("soft %d", total)
	}
	var b strings.Builder
	b.WriteString(LabelStyle.Width(8).Render(label))
	for _, up := range Upcards {
		key := agent.StateKey{
			PlayerTotal:  total,
			DealerUpcard: up,
			UsableAce:    soft,
			Count:        slice.Count,
			Bet:          slice.Bet,
		}
		b.WriteString(" ")
		if act, ok := policy[key]; ok {
			b.WriteString(actionCell(act))
		} else {
			b.WriteString(MutedStyle.Render(" . "))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func upcardLabel(up int) string {
	if up == 1 {
		return " A "
	}
	return fmt.Sprintf("%2d ", up)
}

func actionCell(a table.Action) string {
	switch a {
	case table.Hit:
		return HitStyle.Render(" H ")
	case table.Double:
		return DoubleStyle.Render(" D ")
	default:
		return StandStyle.Render(" S ")
	}
}
