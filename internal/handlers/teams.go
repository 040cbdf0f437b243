package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scrimhub/internal/apperr"
	"scrimhub/internal/models"
	"scrimhub/internal/service"
)

type setMemberRoleRequest struct {
	TargetUID  string `json:"targetUid" binding:"required"`
	RoleInTeam string `json:"roleInTeam" binding:"required,oneof=manager player"`
}

func (h HandlerSet) TeamSetMemberRole(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req setMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.Wrap(err, apperr.InvalidArgument, "invalid payload"))
		return
	}

	err := h.teams.SetMemberRole(c.Request.Context(), caller, service.SetMemberRoleInput{
		TeamID:     c.Param("teamId"),
		TargetUID:  req.TargetUID,
		RoleInTeam: models.TeamRole(req.RoleInTeam),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
