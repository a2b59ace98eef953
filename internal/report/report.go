// Package report renders training results for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/blackjackrl/internal/statistics"
)

// Banner renders a highlighted one-line title.
func Banner(text string) string {
	return TitleStyle.Render(text)
}

// Completed renders the line printed when a scenario finishes.
func Completed(name string) string {
	return SuccessStyle.Render("Completed: " + name)
}

// TrainingSummary renders the one-line summary of a training run.
func TrainingSummary(s statistics.Summary) string {
	return fmt.Sprintf("%s Episodes: %d | Avg Reward: %s | Win Rate: %.2f%% | States: %d",
		LabelStyle.Render("[Summary]"),
		s.Episodes,
		signed(s.AvgReward, "%.3f"),
		s.WinRate*100,
		s.QTableSize)
}

// Evaluation renders the greedy evaluation block.
func Evaluation(s statistics.Summary) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Evaluation Results (%d episodes):", s.Episodes)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "    Average Reward: %s (95%% CI %.4f to %.4f)\n", signed(s.AvgReward, "%.4f"), s.CI95Low, s.CI95High)
	fmt.Fprintf(&b, "    Win Rate: %.2f%%  Push Rate: %.2f%%  Loss Rate: %.2f%%\n", s.WinRate*100, s.PushRate*100, s.LossRate*100)
	fmt.Fprintf(&b, "    Expected Profit/Hour: %s\n", signed(s.ProfitPerHour, "$%.2f"))
	return b.String()
}

var summaryColumns = []struct {
	title string
	width int
}{
	{"Scenario", 24},
	{"Episodes", 10},
	{"Avg Reward", 12},
	{"Win %", 8},
	{"Push %", 8},
	{"Profit/Hour", 13},
	{"States", 8},
}

// SummaryTable renders one row per summary, aligned in fixed-width columns.
func SummaryTable(summaries []statistics.Summary) string {
	cells := make([]string, len(summaryColumns))
	for i, c := range summaryColumns {
		cells[i] = c.title
	}
	lines := []string{HeaderStyle.Render(row(cells))}

	for _, s := range summaries {
		lines = append(lines, row([]string{
			s.Label,
			fmt.Sprintf("%d", s.Episodes),
			signed(s.AvgReward, "%+.4f"),
			fmt.Sprintf("%.2f", s.WinRate*100),
			fmt.Sprintf("%.2f", s.PushRate*100),
			signed(s.ProfitPerHour, "%+.2f"),
			fmt.Sprintf("%d", s.QTableSize),
		}))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func row(cells []string) string {
	rendered := make([]string, len(cells))
	for i, c := range cells {
		style := lipgloss.NewStyle().Width(summaryColumns[i].width)
		if i > 0 {
			style = style.Align(lipgloss.Right)
		}
		rendered[i] = style.Render(c)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
