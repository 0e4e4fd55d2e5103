package progression

import (
	"bondigo/internal/catalog"
)

// Collection score constants.
const (
	basePercent         = 70 // base score is 70% of summed stat totals
	synergyStatMinimum  = 80
	synergyPerCompanion = 25
	rareBonus           = 50
	legendaryBonus      = 125
	perfectionistStat   = 95
)

// Achievement names as shown to users.
const (
	AchMegaCollector     = "Mega Collector"
	AchGrowingCollection = "Growing Collection"
	AchFirstSteps        = "First Steps"
	AchLegendMaster      = "Legend Master"
	AchLegendCollector   = "Legend Collector"
	AchFirstLegend       = "First Legend"
	AchRarityMaster      = "Rarity Master"
	AchStatPerfectionist = "Stat Perfectionist"
)

// CollectionBreakdown is the full, user-facing decomposition of a
// collection score. Base+Synergy+Rarity+Achievement always equals Total.
type CollectionBreakdown struct {
	Base         int64    `json:"base"`
	Synergy      int64    `json:"synergy"`
	Rarity       int64    `json:"rarity"`
	Achievement  int64    `json:"achievement"`
	Total        int64    `json:"total"`
	Achievements []string `json:"achievements"`
}

// collectionLevel is one row of the cumulative collection score table.
type collectionLevel struct {
	MinScore int64
	Level    int
	Title    string
}

var collectionLevels = []collectionLevel{
	{0, 1, "Rookie Collector"},
	{1000, 2, "Bond Enthusiast"},
	{3000, 3, "Collection Curator"},
	{6000, 4, "Master Collector"},
	{10000, 5, "Collection Legend"},
	{15000, 6, "Grandmaster"},
}

// ScoreCollection computes the collection score from the full owned set.
// It is always recomputed fresh, never patched incrementally. The empty set
// scores zero across the board.
func ScoreCollection(owned []*catalog.Companion) CollectionBreakdown {
	var b CollectionBreakdown
	b.Achievements = []string{}
	if len(owned) == 0 {
		return b
	}

	// Base: 70% of summed stat totals, floored.
	var statSum int64
	for _, c := range owned {
		statSum += int64(c.TotalStats())
	}
	b.Base = statSum * basePercent / 100

	// Synergy: a trait group pays 25 per member once at least two owned
	// companions have that trait at 80 or higher. One companion can sit in
	// several groups.
	for _, trait := range catalog.TraitNames {
		count := 0
		for _, c := range owned {
			if c.Stats[trait] >= synergyStatMinimum {
				count++
			}
		}
		if count >= 2 {
			b.Synergy += int64(synergyPerCompanion * count)
		}
	}

	// Rarity bonus and rarity census in one pass.
	counts := map[catalog.Rarity]int{}
	for _, c := range owned {
		r := c.Rarity()
		counts[r]++
		switch r {
		case catalog.Rare:
			b.Rarity += rareBonus
		case catalog.Legendary:
			b.Rarity += legendaryBonus
		}
	}

	// Achievements. Size and legendary tiers are exclusive, highest wins.
	award := func(points int64, name string) {
		b.Achievement += points
		b.Achievements = append(b.Achievements, name)
	}
	switch {
	case len(owned) >= 15:
		award(300, AchMegaCollector)
	case len(owned) >= 8:
		award(100, AchGrowingCollection)
	case len(owned) >= 3:
		award(50, AchFirstSteps)
	}
	switch {
	case counts[catalog.Legendary] >= 5:
		award(500, AchLegendMaster)
	case counts[catalog.Legendary] >= 2:
		award(150, AchLegendCollector)
	case counts[catalog.Legendary] >= 1:
		award(75, AchFirstLegend)
	}
	if counts[catalog.Common] >= 1 && counts[catalog.Rare] >= 1 && counts[catalog.Legendary] >= 1 {
		award(200, AchRarityMaster)
	}
	if hasPerfectStat(owned) {
		award(100, AchStatPerfectionist)
	}

	b.Total = b.Base + b.Synergy + b.Rarity + b.Achievement
	return b
}

// hasPerfectStat reports whether any owned companion has any single trait
// at 95 or higher. The achievement pays once no matter how many qualify.
func hasPerfectStat(owned []*catalog.Companion) bool {
	for _, c := range owned {
		for _, v := range c.Stats {
			if v >= perfectionistStat {
				return true
			}
		}
	}
	return false
}

// CollectionLevelFor returns the level and title for a collection score.
func CollectionLevelFor(score int64) (int, string) {
	cur := collectionLevels[0]
	for _, row := range collectionLevels {
		if score >= row.MinScore {
			cur = row
		}
	}
	return cur.Level, cur.Title
}
