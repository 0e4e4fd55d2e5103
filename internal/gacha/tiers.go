// Package gacha implements the mystery-box tiers and the weighted companion
// roll.
package gacha

import (
	"bondigo/internal/catalog"
)

// Tier identifies a mystery-box purchase tier.
type Tier string

const (
	TierBasic   Tier = "Basic Bond"
	TierPremium Tier = "Premium Bond"
	TierElite   Tier = "Elite Bond"
)

// TierConfig holds the price and rarity odds of a tier. Weights are
// percentages and sum to 100.
type TierConfig struct {
	Tier     Tier
	Price    int64
	Weights  map[catalog.Rarity]int
	Expected catalog.Rarity
}

// Tiers contains the fixed tier table.
var Tiers = map[Tier]TierConfig{
	TierBasic: {
		Tier:     TierBasic,
		Price:    50,
		Weights:  map[catalog.Rarity]int{catalog.Common: 80, catalog.Rare: 18, catalog.Legendary: 2},
		Expected: catalog.Common,
	},
	TierPremium: {
		Tier:     TierPremium,
		Price:    150,
		Weights:  map[catalog.Rarity]int{catalog.Common: 30, catalog.Rare: 50, catalog.Legendary: 20},
		Expected: catalog.Rare,
	},
	TierElite: {
		Tier:     TierElite,
		Price:    400,
		Weights:  map[catalog.Rarity]int{catalog.Common: 10, catalog.Rare: 30, catalog.Legendary: 60},
		Expected: catalog.Legendary,
	},
}

// AllTiers returns the tiers in ascending price order.
func AllTiers() []TierConfig {
	return []TierConfig{Tiers[TierBasic], Tiers[TierPremium], Tiers[TierElite]}
}

// GetTier returns the config for a tier.
func GetTier(tier Tier) (TierConfig, bool) {
	cfg, ok := Tiers[tier]
	return cfg, ok
}

// ParseTier resolves a tier name as sent by clients.
func ParseTier(name string) (Tier, bool) {
	switch Tier(name) {
	case TierBasic, TierPremium, TierElite:
		return Tier(name), true
	}
	return "", false
}

// TierForRarity maps a companion's classified rarity back to the tier whose
// expected outcome it is. Used to price specific (non-mystery) purchases.
func TierForRarity(r catalog.Rarity) TierConfig {
	switch r {
	case catalog.Legendary:
		return Tiers[TierElite]
	case catalog.Rare:
		return Tiers[TierPremium]
	default:
		return Tiers[TierBasic]
	}
}

// SurpriseFactor describes how a revealed companion's actual rarity compares
// to the expected rarity of the tier it was bought under.
type SurpriseFactor string

const (
	SurpriseUpgrade   SurpriseFactor = "upgrade"
	SurpriseExpected  SurpriseFactor = "expected"
	SurpriseDowngrade SurpriseFactor = "downgrade"
)

// Surprise compares an actual rarity against a tier's expected rarity by
// rank. Informational only: it never touches tokens, ownership, or scores.
func Surprise(actual, expected catalog.Rarity) SurpriseFactor {
	switch {
	case actual > expected:
		return SurpriseUpgrade
	case actual < expected:
		return SurpriseDowngrade
	default:
		return SurpriseExpected
	}
}
