package spawn

import (
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/onigiri/internal/model"
)

// Fever adjustments, applied to the base weights before clamping.
const (
	PendingBoost     = 15.0 // per item waiting for its last ingredient
	SurplusThreshold = 2    // more than this many loose items of a kind is a surplus
	SurplusPenalty   = 20.0
	SurplusShift     = 10.0
	WeightFloor      = 5.0
)

// Weights are relative selection weights, in roulette band order.
type Weights struct {
	WhiteRice float64 `yaml:"white_rice"`
	Nori      float64 `yaml:"nori"`
	Filling   float64 `yaml:"filling"`
}

// DefaultWeights returns the stock 40/30/30 split.
func DefaultWeights() Weights {
	return Weights{WhiteRice: 40, Nori: 30, Filling: 30}
}

// Of returns the weight of kind.
func (w Weights) Of(kind model.Kind) float64 {
	switch kind {
	case model.KindWhiteRice:
		return w.WhiteRice
	case model.KindNori:
		return w.Nori
	case model.KindFilling:
		return w.Filling
	default:
		return 0
	}
}

// Total returns the sum of all weights.
func (w Weights) Total() float64 {
	return w.WhiteRice + w.Nori + w.Filling
}

// clamp raises every weight to at least floor.
func (w Weights) clamp(floor float64) Weights {
	w.WhiteRice = max(w.WhiteRice, floor)
	w.Nori = max(w.Nori, floor)
	w.Filling = max(w.Filling, floor)
	return w
}

// Census counts settled items per intermediate state.
type Census struct {
	White    int
	Nori     int
	Filling  int
	WithNori int // waiting for a filling
	FillingO int // waiting for nori
}

// TakeCensus counts items that are neither falling nor merged.
func TakeCensus(items []*model.Item) Census {
	var c Census
	for _, it := range items {
		if it == nil || it.Falling() || it.Merged() {
			continue
		}
		switch it.State() {
		case model.StateWhite:
			c.White++
		case model.StateNori:
			c.Nori++
		case model.StateFilling:
			c.Filling++
		case model.StateWithNori:
			c.WithNori++
		case model.StateFillingO:
			c.FillingO++
		}
	}
	return c
}

// FeverWeights adjusts base weights for the current board.
func FeverWeights(base Weights, c Census) Weights {
	w := base

	if c.FillingO > 0 {
		w.Nori += PendingBoost * float64(c.FillingO)
	}
	if c.WithNori > 0 {
		w.Filling += PendingBoost * float64(c.WithNori)
	}
	if c.White > SurplusThreshold {
		w.WhiteRice -= SurplusPenalty
		w.Nori += SurplusShift
		w.Filling += SurplusShift
	}
	if c.Filling > SurplusThreshold {
		w.WhiteRice += SurplusPenalty
		w.Filling -= SurplusShift
	}
	if c.Nori > SurplusThreshold {
		w.Nori -= SurplusPenalty
		w.WhiteRice += SurplusShift
		w.Filling += SurplusShift
	}

	return w
}

// Policy picks the kind of the next dropped item.
//
// No kind is handed out more than maxConsecutive times in a row. In fever
// mode weights follow the board census so pending onigiri get finished.
type Policy struct {
	base           Weights
	maxConsecutive int
	rng            *rand.Rand

	last        model.Kind
	consecutive int
}

// NewPolicy creates a policy. rng must not be shared with other goroutines.
func NewPolicy(base Weights, maxConsecutive int, rng *rand.Rand) *Policy {
	if maxConsecutive < 1 {
		maxConsecutive = 1
	}
	return &Policy{
		base:           base,
		maxConsecutive: maxConsecutive,
		rng:            rng,
	}
}

// Weights returns the clamped weights used for a normal pick.
func (p *Policy) Weights(fever bool, c Census) Weights {
	w := p.base
	if fever {
		w = FeverWeights(w, c)
	}
	return w.clamp(WeightFloor)
}

// Next selects a kind. It does not record the pick; call Record once the
// item is actually spawned.
func (p *Policy) Next(fever bool, c Census) model.Kind {
	if p.consecutive >= p.maxConsecutive {
		return p.pick(p.base, p.last, true)
	}

	w := p.Weights(fever, c)
	if fever {
		slog.Debug("fever spawn weights",
			"white", w.WhiteRice,
			"nori", w.Nori,
			"filling", w.Filling,
			"total", w.Total())
	}
	return p.pick(w, 0, false)
}

// Record updates the consecutive-pick streak.
func (p *Policy) Record(kind model.Kind) {
	if p.consecutive > 0 && kind == p.last {
		p.consecutive++
		return
	}
	p.last = kind
	p.consecutive = 1
}

// Streak returns the last recorded kind and how many times in a row it was picked.
func (p *Policy) Streak() (model.Kind, int) {
	return p.last, p.consecutive
}

// pick draws uniformly in [0, total) against cumulative bands in
// WhiteRice, Nori, Filling order, optionally skipping one kind.
func (p *Policy) pick(w Weights, exclude model.Kind, excluding bool) model.Kind {
	var total float64
	for _, k := range model.DropKinds {
		if excluding && k == exclude {
			continue
		}
		total += w.Of(k)
	}

	r := p.rng.Float64() * total
	var acc float64
	var lastAllowed model.Kind
	for _, k := range model.DropKinds {
		if excluding && k == exclude {
			continue
		}
		lastAllowed = k
		acc += w.Of(k)
		if r < acc {
			return k
		}
	}
	return lastAllowed
}
