package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"scrimhub/internal/apperr"
)

type blockCreateRequest struct {
	UID string `json:"uid" binding:"required"`
}

func (h HandlerSet) BlockCreate(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req blockCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.Wrap(err, apperr.InvalidArgument, "invalid payload"))
		return
	}

	if err := h.social.Block(c.Request.Context(), caller, req.UID); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h HandlerSet) BlockDelete(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.social.Unblock(c.Request.Context(), caller, c.Param("uid")); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h HandlerSet) NotificationList(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	pageSize := 0
	if raw := c.Query("pageSize"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, apperr.New(apperr.InvalidArgument, "pageSize must be a number"))
			return
		}
		pageSize = v
	}

	notifications, next, err := h.social.Notifications(c.Request.Context(), caller, c.Query("cursor"), pageSize)
	if err != nil {
		h.fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, gin.H{
			"id":        n.ID,
			"kind":      n.Kind,
			"payload":   n.Payload,
			"read":      n.Read,
			"createdAt": n.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"notifications": items, "nextCursor": next})
}

type markReadRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=100"`
}

func (h HandlerSet) NotificationMarkRead(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.Wrap(err, apperr.InvalidArgument, "invalid payload"))
		return
	}

	if err := h.social.MarkNotificationsRead(c.Request.Context(), caller, req.IDs); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h HandlerSet) Me(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	result, err := h.social.Me(c.Request.Context(), caller)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := result.User
	c.JSON(http.StatusOK, gin.H{
		"uid":               user.UID,
		"displayName":       user.DisplayName,
		"avatarUrl":         user.AvatarURL,
		"country":           user.Country,
		"role":              user.Role,
		"certifiedStreamer": user.CertifiedStreamer,
		"totalHonors":       user.TotalHonors,
		"honor": gin.H{
			"pos":   result.Honor.Pos,
			"neg":   result.Honor.Neg,
			"total": result.Honor.Total,
			"stars": result.Honor.Stars,
		},
	})
}
