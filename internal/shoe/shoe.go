// Package shoe manages a multi-deck blackjack shoe: shuffling, dealing,
// penetration-triggered reshuffles and Hi-Lo running count bookkeeping.
package shoe

import (
	"errors"
	"fmt"
	"math"
	rand "math/rand/v2"

	"github.com/lox/blackjackrl/internal/randutil"
)

// CardsPerDeck is the size of a single standard deck.
const CardsPerDeck = 52

// Config controls shoe composition and reshuffle behaviour.
type Config struct {
	// Decks is the number of 52-card decks in the shoe.
	Decks int

	// Penetration is the fraction of the shoe dealt before a reshuffle is forced.
	Penetration float64

	// Counting enables running count updates on every draw.
	Counting bool

	// RoundBoundary defers penetration reshuffles to NeedsReshuffle checks made
	// between rounds. Draws inside a round then only reshuffle when the shoe is
	// physically empty.
	RoundBoundary bool
}

// DefaultConfig returns a single deck dealt to 75% penetration.
func DefaultConfig() Config {
	return Config{
		Decks:       1,
		Penetration: 0.75,
	}
}

// Validate ensures the configuration describes a usable shoe.
func (c Config) Validate() error {
	if c.Decks < 1 {
		return fmt.Errorf("decks must be >= 1 (got %d)", c.Decks)
	}
	if math.IsNaN(c.Penetration) || c.Penetration <= 0 || c.Penetration >= 1 {
		return fmt.Errorf("penetration must be in (0,1) (got %v)", c.Penetration)
	}
	return nil
}

// Shoe is an ordered pool of cards with a draw cursor. It is not safe for
// concurrent use; each simulation loop owns its own shoe.
type Shoe struct {
	cfg      Config
	cards    []Card
	dealt    int
	running  int
	shuffles int
	rng      *rand.Rand
}

// New builds and shuffles a shoe. rng must not be shared with another shoe.
func New(cfg Config, rng *rand.Rand) (*Shoe, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("shoe requires a random source")
	}
	s := &Shoe{
		cfg:   cfg,
		cards: make([]Card, 0, cfg.Decks*CardsPerDeck),
		rng:   rng,
	}
	s.Shuffle()
	return s, nil
}

// NewStacked builds a full shoe whose first draws are top, in order. The rest of
// the shoe is shuffled normally, so composition stays that of a real shoe and
// later reshuffles behave as usual.
func NewStacked(cfg Config, rng *rand.Rand, top ...Card) (*Shoe, error) {
	if rng == nil {
		rng = randutil.New(1)
	}
	s, err := New(cfg, rng)
	if err != nil {
		return nil, err
	}
	if len(top) > len(s.cards) {
		return nil, fmt.Errorf("cannot stack %d cards in a %d card shoe", len(top), len(s.cards))
	}
	for i, want := range top {
		if !want.Valid() {
			return nil, fmt.Errorf("invalid card rank %d", want)
		}
		j := i
		for j < len(s.cards) && s.cards[j] != want {
			j++
		}
		if j == len(s.cards) {
			return nil, fmt.Errorf("shoe has no %s left to stack at position %d", want, i)
		}
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
	return s, nil
}

// Shuffle rebuilds the full shoe and permutes it with Fisher-Yates, resetting
// the running count and the draw cursor.
func (s *Shoe) Shuffle() {
	s.cards = s.cards[:0]
	for range s.cfg.Decks {
		for rank := Ace; rank <= King; rank++ {
			for range 4 {
				s.cards = append(s.cards, rank)
			}
		}
	}
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
	s.dealt = 0
	s.running = 0
	s.shuffles++
}

// Draw deals the next card, reshuffling first when penetration has been reached
// (or, in round-boundary mode, only when the shoe is empty).
func (s *Shoe) Draw() Card {
	if s.dealt >= len(s.cards) || (!s.cfg.RoundBoundary && s.PastPenetration()) {
		s.Shuffle()
	}
	c := s.cards[s.dealt]
	s.dealt++
	if s.cfg.Counting {
		s.running += HiLo(c)
	}
	return c
}

// PastPenetration reports whether the dealt fraction has reached the threshold.
func (s *Shoe) PastPenetration() bool {
	return float64(s.dealt) >= float64(len(s.cards))*s.cfg.Penetration
}

// NeedsReshuffle is polled between rounds. It only reports true in
// round-boundary mode; otherwise Draw reshuffles on its own.
func (s *Shoe) NeedsReshuffle() bool {
	return s.cfg.RoundBoundary && s.PastPenetration()
}

// RunningCount returns the Hi-Lo running count since the last shuffle.
func (s *Shoe) RunningCount() int {
	return s.running
}

// RemainingDecks estimates the number of decks left to deal.
func (s *Shoe) RemainingDecks() float64 {
	return float64(len(s.cards)-s.dealt) / CardsPerDeck
}

// TrueCount normalises the running count by the remaining decks, never dividing
// by less than one deck.
func (s *Shoe) TrueCount() float64 {
	return float64(s.running) / math.Max(1, s.RemainingDecks())
}

// Total returns the number of cards in a full shoe.
func (s *Shoe) Total() int {
	return len(s.cards)
}

// Dealt returns the number of cards drawn since the last shuffle.
func (s *Shoe) Dealt() int {
	return s.dealt
}

// Remaining returns the number of undealt cards.
func (s *Shoe) Remaining() int {
	return len(s.cards) - s.dealt
}

// Shuffles returns how many times the shoe has been shuffled, including the
// initial shuffle.
func (s *Shoe) Shuffles() int {
	return s.shuffles
}

// Config returns the shoe configuration.
func (s *Shoe) Config() Config {
	return s.cfg
}
