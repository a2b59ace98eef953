// Package tui shows live training progress for one or more scenarios.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/blackjackrl/internal/trainer"
)

const (
	defaultBarWidth = 40
	labelWidth      = 22
)

// ProgressMsg carries a trainer progress update into the model.
type ProgressMsg trainer.Progress

// DoneMsg signals that every run has finished.
type DoneMsg struct {
	Err error
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true).
			Width(labelWidth)

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)
)

type run struct {
	bar  progress.Model
	last trainer.Progress
	seen bool
}

// Model is the bubbletea model for the training dashboard.
type Model struct {
	order    []string
	runs     map[string]*run
	cancel   func()
	done     bool
	quitting bool
	err      error
}

// New returns a dashboard with one progress bar per label. cancel is called
// when the user quits early and may be nil.
func New(labels []string, cancel func()) *Model {
	m := &Model{
		order:  append([]string(nil), labels...),
		runs:   make(map[string]*run, len(labels)),
		cancel: cancel,
	}
	for _, l := range labels {
		m.runs[l] = newRun()
	}
	return m
}

func newRun() *run {
	return &run{bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth))}
}

// Forward returns a progress callback that sends updates to p. It is safe to
// call from several trainers at once.
func Forward(p *tea.Program) func(trainer.Progress) {
	return func(pr trainer.Progress) {
		p.Send(ProgressMsg(pr))
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		width := max(10, min(defaultBarWidth, msg.Width-labelWidth-40))
		for _, r := range m.runs {
			r.bar.Width = width
		}

	case ProgressMsg:
		p := trainer.Progress(msg)
		r, ok := m.runs[p.Label]
		if !ok {
			r = newRun()
			m.runs[p.Label] = r
			m.order = append(m.order, p.Label)
		}
		r.last = p
		r.seen = true

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Blackjack Q-learning"))
	b.WriteString("\n\n")
	for _, label := range m.order {
		r := m.runs[label]
		b.WriteString(labelStyle.Render(label))
		b.WriteString(r.bar.ViewAs(r.last.Fraction()))
		if r.seen {
			b.WriteString(statStyle.Render(fmt.Sprintf("  %d/%d  avg %+.4f  eps %.4f  states %d",
				r.last.Episode, r.last.Episodes, r.last.RecentAvg, r.last.Epsilon, r.last.QTableSize)))
		} else {
			b.WriteString(statStyle.Render("  waiting"))
		}
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case m.quitting:
		b.WriteString("\nStopping...\n")
	case !m.done:
		b.WriteString(statStyle.Render("\nPress q to stop\n"))
	}
	return b.String()
}

// Done reports whether a DoneMsg has been received.
func (m *Model) Done() bool {
	return m.done
}

// Err returns the error carried by DoneMsg, if any.
func (m *Model) Err() error {
	return m.err
}

// Last returns the most recent progress seen for label.
func (m *Model) Last(label string) (trainer.Progress, bool) {
	r, ok := m.runs[label]
	if !ok || !r.seen {
		return trainer.Progress{}, false
	}
	return r.last, true
}
