package catalog

// Rarity is the effective rarity of a companion, derived from its stat
// total. It is never stored: catalog files may carry their own rarity tag,
// which is ignored in favor of the classifier below.
type Rarity int

// Rarities in ascending rank order (Common < Rare < Legendary).
const (
	Common Rarity = iota
	Rare
	Legendary
)

// Classification thresholds on a companion's stat total.
const (
	RareThreshold      = 350
	LegendaryThreshold = 400
)

// ClassifyTotal derives a rarity from a stat total. Total function:
// every integer maps to exactly one rarity.
func ClassifyTotal(total int) Rarity {
	switch {
	case total >= LegendaryThreshold:
		return Legendary
	case total >= RareThreshold:
		return Rare
	default:
		return Common
	}
}

// String returns the display name of the rarity.
func (r Rarity) String() string {
	switch r {
	case Legendary:
		return "Legendary"
	case Rare:
		return "Rare"
	default:
		return "Common"
	}
}
