package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scrimhub/internal/apperr"
	"scrimhub/internal/service"
)

type adminUserStatusRequest struct {
	UID      string  `json:"uid" binding:"required"`
	Disabled *bool   `json:"disabled" binding:"required"`
	Duration *int    `json:"duration" binding:"omitempty,min=1,max=8760"`
	Reason   *string `json:"reason" binding:"omitempty,max=300"`
}

func (h HandlerSet) AdminUpdateUserStatus(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req adminUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.Wrap(err, apperr.InvalidArgument, "invalid payload"))
		return
	}

	result, err := h.moderation.SetUserStatus(c.Request.Context(), caller, service.SetUserStatusInput{
		TargetUID:     req.UID,
		Disabled:      *req.Disabled,
		DurationHours: req.Duration,
		Reason:        req.Reason,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
