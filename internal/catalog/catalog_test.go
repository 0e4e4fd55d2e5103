package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassifyTotal tests the rarity thresholds, including the exact
// boundaries on both sides.
func TestClassifyTotal(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		expected Rarity
	}{
		{"zero", 0, Common},
		{"typical common", 300, Common},
		{"just below rare", 349, Common},
		{"rare boundary", 350, Rare},
		{"typical rare", 375, Rare},
		{"just below legendary", 399, Rare},
		{"legendary boundary", 400, Legendary},
		{"high legendary", 500, Legendary},
		{"negative total", -10, Common},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyTotal(tt.total))
		})
	}
}

func TestRarityOrdering(t *testing.T) {
	// Rank comparison drives the surprise factor, so the order is part of
	// the contract.
	assert.True(t, Common < Rare)
	assert.True(t, Rare < Legendary)
}

func TestRarityString(t *testing.T) {
	assert.Equal(t, "Common", Common.String())
	assert.Equal(t, "Rare", Rare.String())
	assert.Equal(t, "Legendary", Legendary.String())
}

const validCatalogJSON = `[
	{
		"id": "a",
		"name": "Ada",
		"bio": "First companion.",
		"tags": ["space", "curious"],
		"stats": {"wit": 90, "empathy": 80, "creativity": 85, "knowledge": 95, "boldness": 70},
		"featured": true
	},
	{
		"id": "b",
		"name": "Bo",
		"bio": "Second companion.",
		"stats": {"wit": 60, "empathy": 62, "creativity": 58, "knowledge": 60, "boldness": 60}
	}
]`

func TestParse(t *testing.T) {
	cat, err := Parse([]byte(validCatalogJSON))
	require.NoError(t, err)
	require.Equal(t, 2, cat.Size())

	a, ok := cat.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Ada", a.Name)
	assert.Equal(t, 420, a.TotalStats())
	assert.Equal(t, Legendary, a.Rarity())

	b, ok := cat.Get("b")
	require.True(t, ok)
	assert.Equal(t, 300, b.TotalStats())
	assert.Equal(t, Common, b.Rarity())

	_, ok = cat.Get("missing")
	assert.False(t, ok)
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"empty catalog", `[]`},
		{"not json", `{`},
		{"empty id", `[{"id": "", "name": "X", "stats": {"wit":1,"empathy":1,"creativity":1,"knowledge":1,"boldness":1}}]`},
		{"duplicate id", `[
			{"id": "a", "name": "X", "stats": {"wit":1,"empathy":1,"creativity":1,"knowledge":1,"boldness":1}},
			{"id": "a", "name": "Y", "stats": {"wit":1,"empathy":1,"creativity":1,"knowledge":1,"boldness":1}}
		]`},
		{"missing name", `[{"id": "a", "stats": {"wit":1,"empathy":1,"creativity":1,"knowledge":1,"boldness":1}}]`},
		{"missing trait", `[{"id": "a", "name": "X", "stats": {"wit":1,"empathy":1,"creativity":1,"knowledge":1}}]`},
		{"unknown extra trait", `[{"id": "a", "name": "X", "stats": {"wit":1,"empathy":1,"creativity":1,"knowledge":1,"boldness":1,"luck":1}}]`},
		{"negative stat", `[{"id": "a", "name": "X", "stats": {"wit":-1,"empathy":1,"creativity":1,"knowledge":1,"boldness":1}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			assert.Error(t, err)
		})
	}
}

func TestCatalog_Featured(t *testing.T) {
	cat, err := Parse([]byte(validCatalogJSON))
	require.NoError(t, err)

	featured := cat.Featured()
	require.Len(t, featured, 1)
	assert.Equal(t, "a", featured[0].ID)
}

func TestCatalog_Resolve(t *testing.T) {
	cat, err := Parse([]byte(validCatalogJSON))
	require.NoError(t, err)

	comps, err := cat.Resolve([]string{"b", "a"})
	require.NoError(t, err)
	require.Len(t, comps, 2)
	assert.Equal(t, "b", comps[0].ID)

	_, err = cat.Resolve([]string{"a", "ghost"})
	assert.Error(t, err)
}

// TestShippedCatalog loads the catalog file that ships with the server and
// checks it covers every rarity, so the mystery tiers always have somewhere
// to land.
func TestShippedCatalog(t *testing.T) {
	cat, err := Load("../../companions.json")
	require.NoError(t, err)

	counts := map[Rarity]int{}
	totals := map[int]bool{}
	for _, c := range cat.All() {
		counts[c.Rarity()]++
		totals[c.TotalStats()] = true
	}
	assert.Greater(t, counts[Common], 0)
	assert.Greater(t, counts[Rare], 0)
	assert.Greater(t, counts[Legendary], 0)
	assert.NotEmpty(t, cat.Featured())

	// Both classification boundaries are exercised by real entries.
	for _, total := range []int{349, 350, 399, 400} {
		assert.True(t, totals[total], "no companion with stat total %d", total)
	}
}
