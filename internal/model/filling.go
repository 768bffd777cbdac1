package model

// Rarity grades a filling for the collection book.
type Rarity uint8

const (
	RarityCommon Rarity = iota
	RarityRare
	RaritySuperRare
	RarityUltraRare
)

func (r Rarity) String() string {
	switch r {
	case RarityRare:
		return "rare"
	case RaritySuperRare:
		return "super_rare"
	case RarityUltraRare:
		return "ultra_rare"
	default:
		return "common"
	}
}

// ParseRarity converts a config string into a Rarity (unknown → common).
func ParseRarity(s string) Rarity {
	switch s {
	case "rare":
		return RarityRare
	case "super_rare":
		return RaritySuperRare
	case "ultra_rare":
		return RarityUltraRare
	default:
		return RarityCommon
	}
}

// Filling is immutable reference data for a filling (ume, salmon, ...).
// Asset keys are opaque to the core and passed through to collaborators.
type Filling struct {
	Name   string
	Score  int
	Rarity Rarity

	Sprite         string
	FillingOSprite string
	FillingNSprite string
	FillingSound   string
	WrappingSound  string
}

// SameFilling reports whether two fillings are the same for matching.
// Identity is the name, never the pointer; nil never matches.
func SameFilling(a, b *Filling) bool {
	if a == nil || b == nil {
		return false
	}
	return a == b || a.Name == b.Name
}

// FillingName returns the name of f, or "" for nil.
func FillingName(f *Filling) string {
	if f == nil {
		return ""
	}
	return f.Name
}
