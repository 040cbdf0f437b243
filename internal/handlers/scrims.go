package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"scrimhub/internal/apperr"
	"scrimhub/internal/models"
	"scrimhub/internal/service"
)

type scrimCreateRequest struct {
	TeamID      string     `json:"teamId" binding:"required"`
	Region      string     `json:"region" binding:"required,max=32"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	Note        *string    `json:"note" binding:"omitempty,max=500"`
}

func (h HandlerSet) ScrimCreate(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req scrimCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.Wrap(err, apperr.InvalidArgument, "invalid payload"))
		return
	}

	scrim, err := h.scrims.Open(c.Request.Context(), caller, models.Scrim{
		TeamID:      req.TeamID,
		Region:      req.Region,
		ScheduledAt: req.ScheduledAt,
		Note:        req.Note,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": scrim.ID, "status": scrim.Status})
}

func (h HandlerSet) ScrimList(c *gin.Context) {
	pageSize := 0
	if raw := c.Query("pageSize"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, apperr.New(apperr.InvalidArgument, "pageSize must be a number"))
			return
		}
		pageSize = v
	}

	scrims, next, err := h.scrims.ListOpen(c.Request.Context(), c.Query("cursor"), pageSize)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"scrims": scrimViews(scrims), "nextCursor": next})
}

func (h HandlerSet) ScrimGet(c *gin.Context) {
	scrim, err := h.scrims.Get(c.Request.Context(), c.Param("scrimId"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, scrimView(scrim))
}

type scrimChallengeRequest struct {
	ChallengingTeamID string `json:"challengingTeamId" binding:"required"`
	ClientID          string `json:"clientId" binding:"omitempty,min=8,max=64"`
}

func (h HandlerSet) ScrimChallenge(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req scrimChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.Wrap(err, apperr.InvalidArgument, "invalid payload"))
		return
	}

	result, err := h.scrims.Challenge(c.Request.Context(), caller, service.ChallengeInput{
		ScrimID:           c.Param("scrimId"),
		ChallengingTeamID: req.ChallengingTeamID,
		ClientID:          req.ClientID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func scrimView(scrim models.Scrim) gin.H {
	return gin.H{
		"id":               scrim.ID,
		"teamId":           scrim.TeamID,
		"status":           scrim.Status,
		"region":           scrim.Region,
		"scheduledAt":      scrim.ScheduledAt,
		"note":             scrim.Note,
		"challengerTeamId": scrim.ChallengerTeamID,
		"challengedBy":     scrim.ChallengedBy,
		"challengedAt":     scrim.ChallengedAt,
		"createdAt":        scrim.CreatedAt,
	}
}

func scrimViews(scrims []models.Scrim) []gin.H {
	views := make([]gin.H, 0, len(scrims))
	for _, scrim := range scrims {
		views = append(views, scrimView(scrim))
	}
	return views
}
