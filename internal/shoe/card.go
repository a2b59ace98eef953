package shoe

import "strconv"

// Card is a rank from 1 (ace) to 13 (king). Suits never matter for blackjack
// arithmetic, so the shoe only tracks ranks.
type Card uint8

const (
	Ace   Card = 1
	Ten   Card = 10
	Jack  Card = 11
	Queen Card = 12
	King  Card = 13
)

// Value is the playable value of the card: face cards and tens clamp to 10 and
// the ace stays 1 so hand evaluation can promote it to 11.
func (c Card) Value() int {
	if c >= Ten {
		return 10
	}
	return int(c)
}

// IsAce reports whether the card is an ace.
func (c Card) IsAce() bool {
	return c == Ace
}

// Valid reports whether c is a real rank.
func (c Card) Valid() bool {
	return c >= Ace && c <= King
}

func (c Card) String() string {
	switch c {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	if c.Valid() {
		return strconv.Itoa(int(c))
	}
	return "?"
}

// HiLo returns the Hi-Lo counting weight of a card: low cards (2-6) are +1,
// neutral cards (7-9) are 0, tens, faces and aces are -1.
func HiLo(c Card) int {
	switch {
	case c >= 2 && c <= 6:
		return 1
	case c >= 7 && c <= 9:
		return 0
	default:
		return -1
	}
}
