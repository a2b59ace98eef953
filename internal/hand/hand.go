// Package hand evaluates blackjack hands. Every function is pure: a Hand is a
// slice of playable card values (1 for an ace, 2-10 otherwise).
package hand

import (
	"strconv"
	"strings"
)

// Blackjack is the best possible total.
const Blackjack = 21

// Hand is an ordered list of playable card values.
type Hand []int

// Score returns the best total of h and whether an ace is still counted as 11.
// Every ace starts at 11 and is demoted to 1 while the total is over 21.
func Score(h Hand) (total int, soft bool) {
	elevated := 0
	for _, v := range h {
		if v == 1 {
			total += 11
			elevated++
			continue
		}
		total += v
	}
	for total > Blackjack && elevated > 0 {
		total -= 10
		elevated--
	}
	return total, elevated > 0
}

// Value returns the best total of h.
func Value(h Hand) int {
	total, _ := Score(h)
	return total
}

// IsSoft reports whether an ace is being counted as 11.
func IsSoft(h Hand) bool {
	_, soft := Score(h)
	return soft
}

// IsBust reports whether h is over 21.
func IsBust(h Hand) bool {
	return Value(h) > Blackjack
}

// IsBlackjack reports whether h is a natural: exactly an ace and a ten-valued card.
func IsBlackjack(h Hand) bool {
	if len(h) != 2 {
		return false
	}
	return (h[0] == 1 && h[1] == 10) || (h[0] == 10 && h[1] == 1)
}

func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, v := range h {
		if v == 1 {
			parts[i] = "A"
		} else {
			parts[i] = strconv.Itoa(v)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
