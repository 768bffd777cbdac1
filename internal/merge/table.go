// Package merge holds the onigiri transition table and the resolver that
// applies it to two items in contact.
package merge

import "github.com/udisondev/onigiri/internal/model"

// Side names a contact participant.
type Side uint8

const (
	SideNone Side = iota
	SideA
	SideB
	SideBoth
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "a"
	case SideB:
		return "b"
	case SideBoth:
		return "both"
	default:
		return "none"
	}
}

// mirror swaps A and B.
func (s Side) mirror() Side {
	switch s {
	case SideA:
		return SideB
	case SideB:
		return SideA
	default:
		return s
	}
}

// Outcome is the result of one merge between participants A and B.
type Outcome struct {
	Survivor Side // participant that changes state; SideNone if none does
	State    model.State
	Filling  *model.Filling
	Destroy  Side

	SpawnRock  bool // spawn a rock at the midpoint
	Completion bool // survivor became FillingN
	Match      bool // hand both participants to the match collector
	Tag        model.EffectTag
}

// Mirror returns the outcome as seen with A and B swapped.
func (o Outcome) Mirror() Outcome {
	o.Survivor = o.Survivor.mirror()
	o.Destroy = o.Destroy.mirror()
	return o
}

type rule func(fa, fb *model.Filling) (Outcome, bool)

// rules is indexed [A][B]. Each unordered pair is defined once; Resolve
// derives the other order by mirroring.
var rules = [model.StateCount][model.StateCount]rule{}

func init() {
	rules[model.StateWhite][model.StateFilling] = func(_, fb *model.Filling) (Outcome, bool) {
		return Outcome{Survivor: SideA, State: model.StateFillingO, Filling: fb, Destroy: SideB, Tag: model.EffectFilling}, true
	}
	rules[model.StateWhite][model.StateNori] = func(_, _ *model.Filling) (Outcome, bool) {
		return Outcome{Survivor: SideA, State: model.StateWithNori, Destroy: SideB, Tag: model.EffectNori}, true
	}
	rules[model.StateFilling][model.StateFilling] = func(_, _ *model.Filling) (Outcome, bool) {
		return Outcome{Survivor: SideA, State: model.StatePickles, Destroy: SideB, Tag: model.EffectPickles}, true
	}
	rules[model.StateWithNori][model.StateFilling] = func(_, fb *model.Filling) (Outcome, bool) {
		return Outcome{Survivor: SideA, State: model.StateFillingN, Filling: fb, Destroy: SideB, Completion: true, Tag: model.EffectWrap}, true
	}
	rules[model.StateFillingO][model.StateNori] = func(fa, _ *model.Filling) (Outcome, bool) {
		return Outcome{Survivor: SideA, State: model.StateFillingN, Filling: fa, Destroy: SideB, Completion: true, Tag: model.EffectWrap}, true
	}
	rules[model.StateNori][model.StateNori] = func(_, _ *model.Filling) (Outcome, bool) {
		return Outcome{Survivor: SideNone, Destroy: SideBoth, SpawnRock: true, Tag: model.EffectRock}, true
	}
	rules[model.StateFillingN][model.StateFillingN] = func(fa, fb *model.Filling) (Outcome, bool) {
		if !model.SameFilling(fa, fb) {
			return Outcome{}, false
		}
		return Outcome{Survivor: SideNone, Filling: fa, Match: true, Tag: model.EffectConsume}, true
	}
}

// Resolve looks up the transition for a contact between A and B.
// ok=false means no merge, which is the common case.
func Resolve(stateA model.State, fillingA *model.Filling, stateB model.State, fillingB *model.Filling) (Outcome, bool) {
	if int(stateA) >= model.StateCount || int(stateB) >= model.StateCount {
		return Outcome{}, false
	}
	if r := rules[stateA][stateB]; r != nil {
		return r(fillingA, fillingB)
	}
	if r := rules[stateB][stateA]; r != nil {
		out, ok := r(fillingB, fillingA)
		if !ok {
			return Outcome{}, false
		}
		return out.Mirror(), true
	}
	return Outcome{}, false
}
