// Package handler exposes the reward engine over HTTP. Thin by design:
// request parsing, error mapping, and nothing else.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bondigo/internal/repository"
	"bondigo/internal/service"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler wires the reward service into gin routes.
type Handler struct {
	rewards *service.RewardService
	health  HealthChecker
}

// New creates a new Handler instance.
func New(rewards *service.RewardService, health HealthChecker) *Handler {
	return &Handler{rewards: rewards, health: health}
}

// Register mounts all routes on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.healthz)

	v1 := r.Group("/v1")
	{
		v1.GET("/catalog", h.listCatalog)
		v1.GET("/catalog/featured", h.listFeatured)

		v1.POST("/users", h.createUser)
		v1.GET("/users", h.getUserByUsername)
		v1.GET("/users/:id", h.getUser)
		v1.POST("/users/:id/airdrop", h.applyAirdrop)

		v1.POST("/users/:id/purchases/mystery", h.purchaseMystery)
		v1.POST("/users/:id/purchases/specific", h.purchaseSpecific)

		v1.POST("/users/:id/chat-xp", h.awardChatXP)
		v1.POST("/users/:id/reveals/:companion_id", h.reveal)

		v1.GET("/users/:id/collection", h.getCollection)
		v1.GET("/users/:id/collection/score", h.getCollectionScore)
	}
}

// healthz answers readiness: the process is up and the database responds.
func (h *Handler) healthz(c *gin.Context) {
	if err := h.health.HealthCheck(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps engine error variants onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient_funds"})
	case errors.Is(err, service.ErrAlreadyOwned),
		errors.Is(err, service.ErrDuplicateOwnership):
		c.JSON(http.StatusConflict, gin.H{"error": "already_owned"})
	case errors.Is(err, service.ErrNoCompanionsAvailable):
		c.JSON(http.StatusConflict, gin.H{"error": "no_companions_available"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
	case errors.Is(err, service.ErrCompanionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "companion_not_found"})
	case errors.Is(err, repository.ErrOwnershipNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_owned"})
	case errors.Is(err, service.ErrUnknownTier):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_tier"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}
