package gacha

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"bondigo/internal/catalog"
)

// Roller errors.
var (
	ErrNoCompanionsAvailable = errors.New("no companions available")
	ErrUnknownTier           = errors.New("unknown mystery tier")
)

// Roller draws companions from the catalog with tier-weighted odds.
type Roller struct {
	cat *catalog.Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller creates a roller over the given catalog.
func NewRoller(cat *catalog.Catalog) *Roller {
	return NewRollerWithSeed(cat, time.Now().UnixNano())
}

// NewRollerWithSeed creates a roller with a fixed seed for deterministic
// testing.
func NewRollerWithSeed(cat *catalog.Catalog, seed int64) *Roller {
	return &Roller{
		cat: cat,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Roll draws one companion for the given tier, never returning one whose id
// is in excluded. Each candidate's weight is the tier's percentage for its
// classified rarity; a pool whose weights sum to zero falls back to a
// uniform draw rather than failing.
func (r *Roller) Roll(tier Tier, excluded map[string]struct{}) (*catalog.Companion, error) {
	cfg, ok := GetTier(tier)
	if !ok {
		return nil, ErrUnknownTier
	}

	pool := make([]*catalog.Companion, 0, r.cat.Size())
	for _, c := range r.cat.All() {
		if _, owned := excluded[c.ID]; owned {
			continue
		}
		pool = append(pool, c)
	}
	if len(pool) == 0 {
		return nil, ErrNoCompanionsAvailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	drawn := r.drawWeighted(pool, cfg)

	// The weighting step is never trusted to exclude correctly.
	if _, owned := excluded[drawn.ID]; owned {
		drawn = pool[r.rng.Intn(len(pool))]
	}

	return drawn, nil
}

// drawWeighted picks from the pool proportionally to each candidate's tier
// weight, uniformly if the total weight is zero.
func (r *Roller) drawWeighted(pool []*catalog.Companion, cfg TierConfig) *catalog.Companion {
	total := 0
	for _, c := range pool {
		total += cfg.Weights[c.Rarity()]
	}
	if total <= 0 {
		return pool[r.rng.Intn(len(pool))]
	}

	pick := r.rng.Intn(total)
	for _, c := range pool {
		pick -= cfg.Weights[c.Rarity()]
		if pick < 0 {
			return c
		}
	}
	// Unreachable while weights are consistent with total.
	return pool[len(pool)-1]
}
