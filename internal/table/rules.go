package table

import (
	"errors"
	"fmt"

	"github.com/lox/blackjackrl/internal/shoe"
)

// MaxBet caps the scaled bet in units.
const MaxBet = 5

// CountBucketLimit bounds the discretised count exposed in observations.
const CountBucketLimit = 5

// Payout is the ratio paid on a natural blackjack, e.g. {3, 2}.
type Payout struct {
	Num int `json:"num"`
	Den int `json:"den"`
}

// Ratio returns the payout as a multiplier of the bet.
func (p Payout) Ratio() float64 {
	return float64(p.Num) / float64(p.Den)
}

func (p Payout) String() string {
	return fmt.Sprintf("%d:%d", p.Num, p.Den)
}

// Rules enumerates every house rule and environment feature. All fields are
// resolved once when the table is built.
type Rules struct {
	// UseCounting tracks the Hi-Lo running count and exposes a count bucket in
	// observations.
	UseCounting bool `json:"use_counting"`

	// DealerHitsSoft17 makes the dealer draw on soft 17.
	DealerHitsSoft17 bool `json:"dealer_hits_soft_17"`

	// BlackjackPayout is paid when the player's natural wins.
	BlackjackPayout Payout `json:"blackjack_payout"`

	// UseTrueCount normalises the running count by remaining decks.
	UseTrueCount bool `json:"use_true_count"`

	// Decks is the number of decks in the shoe.
	Decks int `json:"decks"`

	// UseBetScaling bets 1 + floor(count) units, capped at MaxBet.
	UseBetScaling bool `json:"use_bet_scaling"`

	// RewardShaping adds ShapingBonus to a bust that followed a hit from 11 or less.
	RewardShaping bool `json:"reward_shaping"`

	// RestrictiveDouble only allows doubling on hard or soft totals of 9, 10 and 11.
	RestrictiveDouble bool `json:"restrictive_double"`

	// PushToDealer settles equal totals as a loss.
	PushToDealer bool `json:"push_to_dealer"`

	// Penetration is the dealt fraction of the shoe that forces a reshuffle.
	Penetration float64 `json:"penetration"`

	// RoundBoundaryReshuffle only reshuffles between rounds.
	RoundBoundaryReshuffle bool `json:"round_boundary_reshuffle"`
}

// ShapingBonus is added to a shaped bust reward.
const ShapingBonus = 0.2

// DefaultRules returns a single-deck game where the dealer hits soft 17 and
// naturals pay even money.
func DefaultRules() Rules {
	return Rules{
		DealerHitsSoft17: true,
		BlackjackPayout:  Payout{Num: 1, Den: 1},
		Decks:            1,
		Penetration:      0.75,
	}
}

// Validate ensures the rules are consistent.
func (r Rules) Validate() error {
	if r.BlackjackPayout.Num <= 0 || r.BlackjackPayout.Den <= 0 {
		return fmt.Errorf("blackjack payout must be positive (got %s)", r.BlackjackPayout)
	}
	if r.UseTrueCount && !r.UseCounting {
		return errors.New("use_true_count requires use_counting")
	}
	if r.UseBetScaling && !r.UseCounting {
		return errors.New("use_bet_scaling requires use_counting")
	}
	if err := r.ShoeConfig().Validate(); err != nil {
		return fmt.Errorf("shoe: %w", err)
	}
	return nil
}

// ShoeConfig derives the shoe configuration implied by the rules.
func (r Rules) ShoeConfig() shoe.Config {
	return shoe.Config{
		Decks:         r.Decks,
		Penetration:   r.Penetration,
		Counting:      r.UseCounting,
		RoundBoundary: r.RoundBoundaryReshuffle,
	}
}

// CanDoubleOn reports whether a double is allowed on the given pre-draw total.
func (r Rules) CanDoubleOn(total int) bool {
	if !r.RestrictiveDouble {
		return true
	}
	return total >= 9 && total <= 11
}
