package table

// Action is a player decision. Values index the agent's action-value rows.
type Action int

const (
	Stand Action = iota
	Hit
	Double
)

// NumActions is the size of the action space.
const NumActions = 3

// Actions lists every action in index order.
var Actions = [NumActions]Action{Stand, Hit, Double}

func (a Action) String() string {
	switch a {
	case Stand:
		return "stand"
	case Hit:
		return "hit"
	case Double:
		return "double"
	default:
		return "unknown"
	}
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a >= Stand && a <= Double
}

// Outcome describes how a round was settled.
type Outcome int

const (
	InProgress Outcome = iota
	Win
	Blackjack
	Push
	HousePush
	Loss
	Bust
)

func (o Outcome) String() string {
	switch o {
	case InProgress:
		return "in_progress"
	case Win:
		return "win"
	case Blackjack:
		return "blackjack"
	case Push:
		return "push"
	case HousePush:
		return "house_push"
	case Loss:
		return "loss"
	case Bust:
		return "bust"
	default:
		return "unknown"
	}
}
