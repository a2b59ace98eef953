package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	PositiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	NegativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	StandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#C0392B"))

	HitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#27AE60"))

	DoubleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFD700"))
)

// DisableColor renders every style as plain text from now on.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func signed(v float64, format string) string {
	s := fmt.Sprintf(format, v)
	switch {
	case v > 0:
		return PositiveStyle.Render(s)
	case v < 0:
		return NegativeStyle.Render(s)
	default:
		return s
	}
}
