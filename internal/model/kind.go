package model

// Kind is what the spawner created. It never changes after spawn.
type Kind uint8

const (
	KindWhiteRice Kind = iota
	KindNori
	KindFilling
	KindRock
)

// DropKinds lists the kinds the spawner can select, in roulette band order.
var DropKinds = [...]Kind{KindWhiteRice, KindNori, KindFilling}

func (k Kind) String() string {
	switch k {
	case KindWhiteRice:
		return "white_rice"
	case KindNori:
		return "nori"
	case KindFilling:
		return "filling"
	case KindRock:
		return "rock"
	default:
		return "unknown"
	}
}

// InitialState returns the state an item of this kind starts in.
func (k Kind) InitialState() State {
	switch k {
	case KindNori:
		return StateNori
	case KindFilling:
		return StateFilling
	case KindRock:
		return StateRock
	default:
		return StateWhite
	}
}

// State is the onigiri state machine position of an item.
type State uint8

const (
	StateWhite      State = iota // plain rice ball
	StateNori                    // loose nori sheet
	StateFilling                 // loose filling
	StateWithNori                // white + nori, waiting for a filling
	StateFillingO                // white + filling, waiting for nori
	StateFillingN                // fully wrapped, ready to match
	StateDoubleNori              // unreachable, kept for save compatibility
	StateRock                    // nori + nori obstacle
	StatePickles                 // filling + filling obstacle

	stateCount
)

// StateCount is the number of enumerated states.
const StateCount = int(stateCount)

func (s State) String() string {
	switch s {
	case StateWhite:
		return "white"
	case StateNori:
		return "nori"
	case StateFilling:
		return "filling"
	case StateWithNori:
		return "with_nori"
	case StateFillingO:
		return "filling_o"
	case StateFillingN:
		return "filling_n"
	case StateDoubleNori:
		return "double_nori"
	case StateRock:
		return "rock"
	case StatePickles:
		return "pickles"
	default:
		return "unknown"
	}
}

// CarriesFilling reports whether items in this state hold a filling payload.
func (s State) CarriesFilling() bool {
	return s == StateFilling || s == StateFillingO || s == StateFillingN
}

// IsObstacle reports whether the state can only be cleared by a match elsewhere.
func (s State) IsObstacle() bool {
	return s == StateRock || s == StatePickles
}
