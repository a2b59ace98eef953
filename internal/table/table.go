package table

import (
	"errors"
	"io"
	"math"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjackrl/internal/hand"
	"github.com/lox/blackjackrl/internal/shoe"
)

// ErrRoundFinished is returned when Step is called on a settled round (or
// before the first Reset).
var ErrRoundFinished = errors.New("table: round already finished, call Reset")

// Table plays one blackjack round at a time against a persistent shoe.
type Table struct {
	rules  Rules
	shoe   *shoe.Shoe
	logger *log.Logger

	player    hand.Hand
	dealer    hand.Hand
	done      bool
	canDouble bool
	doubled   bool
	bet       int
	rounds    int
}

// NewTable validates rules and builds a table over a fresh shoe drawing from rng.
func NewTable(rules Rules, rng *rand.Rand, logger *log.Logger) (*Table, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	s, err := shoe.New(rules.ShoeConfig(), rng)
	if err != nil {
		return nil, err
	}
	return newTable(rules, s, logger), nil
}

// NewTableWithShoe builds a table over an existing shoe, typically a stacked
// one in tests. The shoe must have been built from rules.ShoeConfig().
func NewTableWithShoe(rules Rules, s *shoe.Shoe, logger *log.Logger) (*Table, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New("table: nil shoe")
	}
	if s.Config() != rules.ShoeConfig() {
		return nil, errors.New("table: shoe config does not match rules")
	}
	return newTable(rules, s, logger), nil
}

func newTable(rules Rules, s *shoe.Shoe, logger *log.Logger) *Table {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Table{
		rules:  rules,
		shoe:   s,
		logger: logger.WithPrefix("table"),
		done:   true,
	}
}

// Reset starts a new round and returns the initial observation. The bet is
// placed before any card is dealt, so it only reflects cards from earlier rounds.
func (t *Table) Reset() Observation {
	if t.shoe.NeedsReshuffle() {
		t.shoe.Shuffle()
		t.logger.Debug("Reshuffled at round boundary")
	}

	t.bet = t.placeBet()
	t.player = hand.Hand{t.draw(), t.draw()}
	t.dealer = hand.Hand{t.draw(), t.draw()}
	t.done = false
	t.canDouble = true
	t.doubled = false
	t.rounds++

	t.logger.Debug("Dealt round",
		"round", t.rounds,
		"player", t.player,
		"upcard", t.dealer[0],
		"bet", t.bet,
		"running_count", t.shoe.RunningCount())
	return t.Observation()
}

// Step applies action to the current round. Unknown actions and doubles that
// the rules do not allow are played as Stand.
func (t *Table) Step(action Action) (StepResult, error) {
	if t.done {
		return StepResult{}, ErrRoundFinished
	}

	switch action {
	case Hit:
		return t.hit(), nil
	case Double:
		if t.canDouble && t.rules.CanDoubleOn(hand.Value(t.player)) {
			return t.double(), nil
		}
		t.logger.Debug("Double not allowed, standing", "player", t.player)
	case Stand:
	default:
		t.logger.Debug("Unknown action, standing", "action", int(action))
	}
	return t.stand(), nil
}

func (t *Table) hit() StepResult {
	before := hand.Value(t.player)
	t.player = append(t.player, t.draw())
	t.canDouble = false

	if !hand.IsBust(t.player) {
		return t.result(0, InProgress)
	}

	t.done = true
	reward := -float64(t.bet)
	if t.rules.RewardShaping && before <= 11 {
		reward += ShapingBonus
	}
	return t.result(reward, Bust)
}

func (t *Table) double() StepResult {
	t.player = append(t.player, t.draw())
	t.canDouble = false
	t.doubled = true
	t.done = true

	if hand.IsBust(t.player) {
		return t.result(-float64(t.wager()), Bust)
	}
	t.playDealer()
	return t.settle()
}

func (t *Table) stand() StepResult {
	t.canDouble = false
	t.done = true
	t.playDealer()
	return t.settle()
}

// playDealer draws to 17, hitting soft 17 when the rules say so.
func (t *Table) playDealer() {
	for {
		total, soft := hand.Score(t.dealer)
		if total > 17 || (total == 17 && !(soft && t.rules.DealerHitsSoft17)) {
			return
		}
		t.dealer = append(t.dealer, t.draw())
	}
}

// settle resolves a finished round. Naturals are compared before totals: a
// player natural beats any dealer hand that is not itself a natural and vice
// versa, and two naturals push.
func (t *Table) settle() StepResult {
	wager := float64(t.wager())
	playerTotal := hand.Value(t.player)
	dealerTotal := hand.Value(t.dealer)
	playerNatural := !t.doubled && hand.IsBlackjack(t.player)
	dealerNatural := hand.IsBlackjack(t.dealer)

	var reward float64
	var outcome Outcome
	switch {
	case playerNatural && dealerNatural:
		reward, outcome = t.push(wager)
	case playerNatural:
		reward, outcome = wager*t.rules.BlackjackPayout.Ratio(), Blackjack
	case dealerNatural:
		reward, outcome = -wager, Loss
	case dealerTotal > hand.Blackjack || playerTotal > dealerTotal:
		reward, outcome = wager, Win
	case playerTotal == dealerTotal:
		reward, outcome = t.push(wager)
	default:
		reward, outcome = -wager, Loss
	}

	t.logger.Debug("Round settled",
		"round", t.rounds,
		"player", t.player,
		"dealer", t.dealer,
		"outcome", outcome,
		"reward", reward)
	return t.result(reward, outcome)
}

func (t *Table) push(wager float64) (float64, Outcome) {
	if t.rules.PushToDealer {
		return -wager, HousePush
	}
	return 0, Push
}

func (t *Table) result(reward float64, outcome Outcome) StepResult {
	info := Info{
		Bet:          t.wager(),
		Outcome:      outcome,
		Doubled:      t.doubled,
		PlayerTotal:  hand.Value(t.player),
		DealerCards:  len(t.dealer),
		RunningCount: t.shoe.RunningCount(),
		TrueCount:    t.shoe.TrueCount(),
	}
	if t.done {
		info.DealerTotal = hand.Value(t.dealer)
	}
	return StepResult{
		Observation: t.Observation(),
		Reward:      reward,
		Done:        t.done,
		Info:        info,
	}
}

func (t *Table) wager() int {
	if t.doubled {
		return 2 * t.bet
	}
	return t.bet
}

func (t *Table) draw() int {
	return t.shoe.Draw().Value()
}

// countSignal is the count the table bets and discretises on: the true count
// when enabled, the running count otherwise, zero without counting.
func (t *Table) countSignal() float64 {
	switch {
	case !t.rules.UseCounting:
		return 0
	case t.rules.UseTrueCount:
		return t.shoe.TrueCount()
	default:
		return float64(t.shoe.RunningCount())
	}
}

func (t *Table) placeBet() int {
	if !t.rules.UseBetScaling {
		return 1
	}
	bet := 1 + max(0, int(math.Floor(t.countSignal())))
	return min(bet, MaxBet)
}

// countBucket rounds the count half to even and clamps it to CountBucketLimit.
func countBucket(count float64) int {
	bucket := int(math.RoundToEven(count))
	return max(-CountBucketLimit, min(CountBucketLimit, bucket))
}

// Observation returns the current view of the round.
func (t *Table) Observation() Observation {
	total, soft := hand.Score(t.player)
	obs := Observation{
		PlayerTotal: total,
		UsableAce:   soft,
		CanDouble:   t.canDouble && !t.done,
	}
	if len(t.dealer) > 0 {
		obs.DealerUpcard = t.dealer[0]
	}
	if t.rules.UseCounting {
		obs.CountBucket = countBucket(t.countSignal())
	}
	if t.rules.UseBetScaling {
		obs.Bet = t.bet
	}
	return obs
}

// Done reports whether the current round is settled.
func (t *Table) Done() bool {
	return t.done
}

// Rules returns the table rules.
func (t *Table) Rules() Rules {
	return t.rules
}

// Shoe exposes the shoe for diagnostics. Callers must not draw from it.
func (t *Table) Shoe() *shoe.Shoe {
	return t.shoe
}

// PlayerHand returns a copy of the player's cards.
func (t *Table) PlayerHand() hand.Hand {
	return append(hand.Hand(nil), t.player...)
}

// DealerHand returns a copy of the dealer's cards.
func (t *Table) DealerHand() hand.Hand {
	return append(hand.Hand(nil), t.dealer...)
}

// Rounds returns the number of rounds dealt.
func (t *Table) Rounds() int {
	return t.rounds
}
