package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"scrimhub/internal/apperr"
	"scrimhub/internal/models"
	"scrimhub/internal/service"
)

type honorGiveRequest struct {
	To     string  `json:"to" binding:"required"`
	Kind   string  `json:"kind" binding:"required,oneof=pos neg"`
	Type   string  `json:"type" binding:"required"`
	Reason *string `json:"reason" binding:"omitempty,max=200"`
}

func (h HandlerSet) HonorGive(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req honorGiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.Wrap(err, apperr.InvalidArgument, "invalid payload"))
		return
	}

	result, err := h.honor.Give(c.Request.Context(), caller, service.GiveInput{
		To:     req.To,
		Kind:   models.HonorKind(req.Kind),
		Type:   models.HonorType(req.Type),
		Reason: req.Reason,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "id": result.ID})
}

type honorRevokeRequest struct {
	HonorID string `json:"honorId" binding:"required"`
}

func (h HandlerSet) HonorRevoke(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req honorRevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.Wrap(err, apperr.InvalidArgument, "invalid payload"))
		return
	}

	if err := h.honor.Revoke(c.Request.Context(), caller, req.HonorID); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h HandlerSet) HonorStats(c *gin.Context) {
	stats, err := h.honor.Stats(c.Request.Context(), c.Param("uid"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pos":   stats.Pos,
		"neg":   stats.Neg,
		"total": stats.Total,
		"stars": stats.Stars,
	})
}

func (h HandlerSet) HonorRankings(c *gin.Context) {
	pageSize := 0
	if raw := c.Query("pageSize"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, apperr.New(apperr.InvalidArgument, "pageSize must be a number"))
			return
		}
		pageSize = v
	}

	result, err := h.honor.Rankings(c.Request.Context(), c.Query("cursor"), pageSize)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
