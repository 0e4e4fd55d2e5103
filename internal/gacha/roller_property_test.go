package gacha

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"bondigo/internal/catalog"
)

// TestRollExclusivityProperty rolls with arbitrary excluded subsets and
// checks the draw never lands on an excluded companion, for every tier.
func TestRollExclusivityProperty(t *testing.T) {
	cat := testCatalog(t, map[string]int{
		"ada": 300, "bea": 360, "cyn": 420, "dee": 310,
		"eve": 405, "fay": 355, "gus": 280, "hal": 440,
	})
	ids := make([]string, 0, cat.Size())
	for _, c := range cat.All() {
		ids = append(ids, c.ID)
	}

	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		tier := rapid.SampledFrom([]Tier{TierBasic, TierPremium, TierElite}).Draw(t, "tier")

		// Exclude up to all-but-one companion.
		n := rapid.IntRange(0, len(ids)-1).Draw(t, "excludedCount")
		excluded := make(map[string]struct{}, n)
		for _, id := range rapid.SliceOfNDistinct(rapid.SampledFrom(ids), n, n, rapid.ID[string]).Draw(t, "excluded") {
			excluded[id] = struct{}{}
		}

		r := NewRollerWithSeed(cat, seed)
		c, err := r.Roll(tier, excluded)
		require.NoError(t, err)
		if _, owned := excluded[c.ID]; owned {
			t.Fatalf("rolled excluded companion %s", c.ID)
		}
	})
}

// TestSurpriseRankProperty: the surprise factor is exactly the rank
// comparison of actual against expected rarity.
func TestSurpriseRankProperty(t *testing.T) {
	rarities := []catalog.Rarity{catalog.Common, catalog.Rare, catalog.Legendary}

	rapid.Check(t, func(t *rapid.T) {
		actual := rapid.SampledFrom(rarities).Draw(t, "actual")
		expected := rapid.SampledFrom(rarities).Draw(t, "expected")

		got := Surprise(actual, expected)
		switch {
		case actual > expected:
			require.Equal(t, SurpriseUpgrade, got)
		case actual < expected:
			require.Equal(t, SurpriseDowngrade, got)
		default:
			require.Equal(t, SurpriseExpected, got)
		}
	})
}
