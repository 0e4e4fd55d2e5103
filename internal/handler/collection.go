package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type chatXPRequest struct {
	CompanionID   string `json:"companion_id" binding:"required"`
	MessageLength int    `json:"message_length" binding:"min=1"`
}

// awardChatXP records one user-authored chat message. The presentation
// layer talks to the LLM itself and reports only the message length here.
func (h *Handler) awardChatXP(c *gin.Context) {
	var req chatXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	xp, err := h.rewards.AwardChatXP(c.Request.Context(), c.Param("id"), req.CompanionID, req.MessageLength)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"xp_awarded": xp})
}

// reveal flips a mystery acquisition to revealed on first chat entry.
// Responds 204 when there is nothing to reveal.
func (h *Handler) reveal(c *gin.Context) {
	info, err := h.rewards.RevealIfNeeded(c.Request.Context(), c.Param("id"), c.Param("companion_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if info == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) getCollection(c *gin.Context) {
	owned, err := h.rewards.GetCollection(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, owned)
}

func (h *Handler) getCollectionScore(c *gin.Context) {
	breakdown, err := h.rewards.GetCollectionScore(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}
