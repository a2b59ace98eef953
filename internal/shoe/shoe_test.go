package shoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjackrl/internal/randutil"
)

func newShoe(t *testing.T, cfg Config, seed int64) *Shoe {
	t.Helper()
	s, err := New(cfg, randutil.New(seed))
	require.NoError(t, err)
	return s
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"six decks", Config{Decks: 6, Penetration: 0.8}, false},
		{"zero decks", Config{Decks: 0, Penetration: 0.75}, true},
		{"zero penetration", Config{Decks: 1, Penetration: 0}, true},
		{"full penetration", Config{Decks: 1, Penetration: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRequiresRandomSource(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestShuffleComposition(t *testing.T) {
	s := newShoe(t, Config{Decks: 2, Penetration: 0.75}, 3)
	require.Equal(t, 104, s.Total())

	counts := map[Card]int{}
	for _, c := range s.cards {
		counts[c]++
	}
	for rank := Ace; rank <= King; rank++ {
		assert.Equal(t, 8, counts[rank], "rank %s", rank)
	}
	assert.Zero(t, s.Dealt())
	assert.Zero(t, s.RunningCount())
}

func TestShuffleIsSeeded(t *testing.T) {
	a := newShoe(t, DefaultConfig(), 11)
	b := newShoe(t, DefaultConfig(), 11)
	c := newShoe(t, DefaultConfig(), 12)
	assert.Equal(t, a.cards, b.cards)
	assert.NotEqual(t, a.cards, c.cards)
}

func TestHiLo(t *testing.T) {
	want := map[Card]int{
		Ace: -1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1,
		7: 0, 8: 0, 9: 0, Ten: -1, Jack: -1, Queen: -1, King: -1,
	}
	for c, w := range want {
		assert.Equal(t, w, HiLo(c), "card %s", c)
	}
}

func TestCardValue(t *testing.T) {
	assert.Equal(t, 1, Ace.Value())
	assert.Equal(t, 7, Card(7).Value())
	assert.Equal(t, 10, Ten.Value())
	assert.Equal(t, 10, King.Value())
	assert.Equal(t, "A", Ace.String())
	assert.Equal(t, "Q", Queen.String())
	assert.Equal(t, "9", Card(9).String())
}

func TestDealtNeverExceedsTotal(t *testing.T) {
	s := newShoe(t, Config{Decks: 1, Penetration: 0.9}, 5)
	for range 1000 {
		s.Draw()
		require.LessOrEqual(t, s.Dealt(), s.Total())
	}
}

func TestPenetrationReshuffleOnFortiethDraw(t *testing.T) {
	s := newShoe(t, Config{Decks: 1, Penetration: 0.75}, 9)
	initial := s.Shuffles()

	for range 39 {
		s.Draw()
	}
	require.Equal(t, 39, s.Dealt())
	require.Equal(t, initial, s.Shuffles(), "no reshuffle before the threshold is crossed")

	s.Draw()
	assert.Equal(t, initial+1, s.Shuffles())
	assert.Equal(t, 1, s.Dealt(), "the 40th card comes from a fresh shoe")
}

func TestReshuffleResetsCount(t *testing.T) {
	s, err := NewStacked(Config{Decks: 1, Penetration: 0.5, Counting: true}, randutil.New(1), 2, 3, 4)
	require.NoError(t, err)
	for range 3 {
		s.Draw()
	}
	require.Equal(t, 3, s.RunningCount())

	s.Shuffle()
	assert.Zero(t, s.RunningCount())
	assert.Zero(t, s.Dealt())
}

func TestRunningCountTracksDraws(t *testing.T) {
	s, err := NewStacked(Config{Decks: 1, Penetration: 0.75, Counting: true}, nil, 2, King, 7, Ace, 5)
	require.NoError(t, err)

	var drawn []Card
	for range 5 {
		drawn = append(drawn, s.Draw())
	}
	assert.Equal(t, []Card{2, King, 7, Ace, 5}, drawn)
	assert.Equal(t, 0, s.RunningCount())
}

func TestCountingDisabled(t *testing.T) {
	s, err := NewStacked(DefaultConfig(), nil, 2, 3)
	require.NoError(t, err)
	s.Draw()
	s.Draw()
	assert.Zero(t, s.RunningCount())
}

func TestTrueCount(t *testing.T) {
	s, err := NewStacked(Config{Decks: 6, Penetration: 0.75, Counting: true}, nil, 2, 3, 4, 5)
	require.NoError(t, err)
	for range 4 {
		s.Draw()
	}
	remaining := float64(6*52-4) / 52
	assert.InDelta(t, remaining, s.RemainingDecks(), 1e-12)
	assert.InDelta(t, 4/remaining, s.TrueCount(), 1e-12)

	single, err := NewStacked(Config{Decks: 1, Penetration: 0.9, Counting: true}, nil, 2, 3)
	require.NoError(t, err)
	single.Draw()
	single.Draw()
	assert.Equal(t, 2.0, single.TrueCount(), "divisor never drops below one deck")
}

func TestRoundBoundaryDefersReshuffle(t *testing.T) {
	s := newShoe(t, Config{Decks: 1, Penetration: 0.5, RoundBoundary: true}, 2)
	initial := s.Shuffles()

	for range 30 {
		s.Draw()
	}
	assert.Equal(t, initial, s.Shuffles(), "mid-round draws do not reshuffle")
	assert.True(t, s.NeedsReshuffle())

	for range 22 {
		s.Draw()
	}
	require.Equal(t, 52, s.Dealt())
	s.Draw()
	assert.Equal(t, initial+1, s.Shuffles(), "an empty shoe always reshuffles")
	assert.Equal(t, 1, s.Dealt())
}

func TestNeedsReshuffleOnlyInRoundBoundaryMode(t *testing.T) {
	s := newShoe(t, Config{Decks: 1, Penetration: 0.1}, 2)
	for range 6 {
		s.Draw()
	}
	assert.True(t, s.PastPenetration())
	assert.False(t, s.NeedsReshuffle())
}

func TestNewStackedErrors(t *testing.T) {
	_, err := NewStacked(DefaultConfig(), nil, Ace, Ace, Ace, Ace, Ace)
	assert.Error(t, err, "a single deck has only four aces")

	_, err = NewStacked(DefaultConfig(), nil, Card(14))
	assert.Error(t, err)
}
