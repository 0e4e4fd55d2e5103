// Package catalog loads the static companion catalog and derives companion
// rarity from stat totals.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Trait names every companion must carry, in display order.
var TraitNames = []string{"wit", "empathy", "creativity", "knowledge", "boldness"}

// Companion is a single catalog entry. Immutable after load.
type Companion struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Bio      string         `json:"bio"`
	Tags     []string       `json:"tags"`
	Stats    map[string]int `json:"stats"`
	Featured bool           `json:"featured"`

	// total is the sum of Stats, computed once at load.
	total int
}

// TotalStats returns the sum of the companion's trait values.
func (c *Companion) TotalStats() int {
	return c.total
}

// Rarity returns the companion's effective rarity, always derived from the
// stat total.
func (c *Companion) Rarity() Rarity {
	return ClassifyTotal(c.total)
}

// Catalog is the full set of companions, loaded once at process start.
type Catalog struct {
	companions []*Companion
	byID       map[string]*Companion
}

// Load reads and validates a companion catalog from a JSON file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from raw JSON. Validation rules: non-empty unique
// ids, a name, exactly the five known traits, and no negative trait values.
func Parse(data []byte) (*Catalog, error) {
	var companions []*Companion
	if err := json.Unmarshal(data, &companions); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(companions) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	byID := make(map[string]*Companion, len(companions))
	for _, c := range companions {
		if c.ID == "" {
			return nil, fmt.Errorf("companion with empty id")
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate companion id %q", c.ID)
		}
		if c.Name == "" {
			return nil, fmt.Errorf("companion %q has no name", c.ID)
		}
		if len(c.Stats) != len(TraitNames) {
			return nil, fmt.Errorf("companion %q has %d stats, want %d", c.ID, len(c.Stats), len(TraitNames))
		}
		total := 0
		for _, trait := range TraitNames {
			v, ok := c.Stats[trait]
			if !ok {
				return nil, fmt.Errorf("companion %q is missing trait %q", c.ID, trait)
			}
			if v < 0 {
				return nil, fmt.Errorf("companion %q has negative %s", c.ID, trait)
			}
			total += v
		}
		c.total = total
		byID[c.ID] = c
	}

	return &Catalog{companions: companions, byID: byID}, nil
}

// Get returns the companion with the given id.
func (cat *Catalog) Get(id string) (*Companion, bool) {
	c, ok := cat.byID[id]
	return c, ok
}

// All returns every companion in catalog order.
func (cat *Catalog) All() []*Companion {
	return cat.companions
}

// Featured returns the companions whose identity is shown before purchase,
// sorted by id for stable display.
func (cat *Catalog) Featured() []*Companion {
	var out []*Companion
	for _, c := range cat.companions {
		if c.Featured {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Size returns the number of companions in the catalog.
func (cat *Catalog) Size() int {
	return len(cat.companions)
}

// Resolve maps a set of companion ids to their catalog entries. Unknown ids
// are reported as an error so stale ownership rows surface loudly instead
// of silently skewing scores.
func (cat *Catalog) Resolve(ids []string) ([]*Companion, error) {
	out := make([]*Companion, 0, len(ids))
	for _, id := range ids {
		c, ok := cat.byID[id]
		if !ok {
			return nil, fmt.Errorf("companion %q not in catalog", id)
		}
		out = append(out, c)
	}
	return out, nil
}
