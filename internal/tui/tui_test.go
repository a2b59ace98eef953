package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjackrl/internal/trainer"
)

func TestProgressUpdatesRun(t *testing.T) {
	m := New([]string{"basic_strategy", "counting_strategy"}, nil)
	assert.Contains(t, m.View(), "waiting")

	_, cmd := m.Update(ProgressMsg(trainer.Progress{
		Label:      "basic_strategy",
		Episode:    500,
		Episodes:   1000,
		RecentAvg:  -0.05,
		Epsilon:    0.6,
		QTableSize: 250,
	}))
	assert.Nil(t, cmd)

	last, ok := m.Last("basic_strategy")
	require.True(t, ok)
	assert.Equal(t, 500, last.Episode)
	_, ok = m.Last("counting_strategy")
	assert.False(t, ok)

	view := m.View()
	assert.Contains(t, view, "500/1000")
	assert.Contains(t, view, "avg -0.0500")
	assert.Contains(t, view, "states 250")
}

func TestUnknownLabelAddsRun(t *testing.T) {
	m := New(nil, nil)
	m.Update(ProgressMsg(trainer.Progress{Label: "extra", Episode: 1, Episodes: 2}))
	_, ok := m.Last("extra")
	assert.True(t, ok)
	assert.Contains(t, m.View(), "extra")
}

func TestQuitCancels(t *testing.T) {
	cancelled := false
	m := New([]string{"a"}, func() { cancelled = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, cancelled)
	assert.Contains(t, m.View(), "Stopping")
}

func TestDoneQuits(t *testing.T) {
	m := New([]string{"a"}, nil)
	_, cmd := m.Update(DoneMsg{Err: errors.New("boom")})
	require.NotNil(t, cmd)
	assert.True(t, m.Done())
	assert.EqualError(t, m.Err(), "boom")
	assert.Contains(t, m.View(), "Error: boom")
}

func TestWindowResizeKeepsBarsUsable(t *testing.T) {
	m := New([]string{"a"}, nil)
	m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	assert.Equal(t, 10, m.runs["a"].bar.Width)
	m.Update(tea.WindowSizeMsg{Width: 200, Height: 10})
	assert.Equal(t, defaultBarWidth, m.runs["a"].bar.Width)
}
