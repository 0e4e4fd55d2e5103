package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bondigo/internal/catalog"
	"bondigo/internal/gacha"
)

// companionView is the outward shape of a catalog entry. Rarity and price
// are always derived, never read from the file.
type companionView struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Bio      string         `json:"bio"`
	Tags     []string       `json:"tags"`
	Stats    map[string]int `json:"stats"`
	Total    int            `json:"total_stats"`
	Rarity   string         `json:"rarity"`
	Price    int64          `json:"price"`
	Featured bool           `json:"featured"`
}

func toView(c *catalog.Companion) companionView {
	r := c.Rarity()
	return companionView{
		ID:       c.ID,
		Name:     c.Name,
		Bio:      c.Bio,
		Tags:     c.Tags,
		Stats:    c.Stats,
		Total:    c.TotalStats(),
		Rarity:   r.String(),
		Price:    gacha.TierForRarity(r).Price,
		Featured: c.Featured,
	}
}

func (h *Handler) listCatalog(c *gin.Context) {
	all := h.rewards.Catalog().All()
	out := make([]companionView, 0, len(all))
	for _, comp := range all {
		out = append(out, toView(comp))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) listFeatured(c *gin.Context) {
	featured := h.rewards.Catalog().Featured()
	out := make([]companionView, 0, len(featured))
	for _, comp := range featured {
		out = append(out, toView(comp))
	}
	c.JSON(http.StatusOK, out)
}

type mysteryPurchaseRequest struct {
	Tier string `json:"tier" binding:"required"`
}

func (h *Handler) purchaseMystery(c *gin.Context) {
	var req mysteryPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	tier, ok := gacha.ParseTier(req.Tier)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_tier"})
		return
	}

	comp, user, err := h.rewards.PurchaseMystery(c.Request.Context(), c.Param("id"), tier)
	if err != nil {
		respondError(c, err)
		return
	}

	// The companion identity stays hidden until reveal; only the wallet and
	// a receipt go back.
	c.JSON(http.StatusOK, gin.H{
		"companion_id": comp.ID,
		"tier":         string(tier),
		"user":         user,
	})
}

type specificPurchaseRequest struct {
	CompanionID string `json:"companion_id" binding:"required"`
}

func (h *Handler) purchaseSpecific(c *gin.Context) {
	var req specificPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, err := h.rewards.PurchaseSpecific(c.Request.Context(), c.Param("id"), req.CompanionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companion_id": req.CompanionID, "user": user})
}
