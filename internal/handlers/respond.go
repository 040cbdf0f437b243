package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scrimhub/internal/apperr"
	"scrimhub/internal/middleware"
	"scrimhub/internal/models"
)

// fail writes the stable error kind plus its caller-facing message. The
// wrapped cause stays in the logs only.
func (h HandlerSet) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}

	c.JSON(status, gin.H{
		"error":   string(apperr.KindOf(err)),
		"message": apperr.MessageOf(err),
	})
}

func (h HandlerSet) caller(c *gin.Context) (models.Caller, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   string(apperr.Unauthenticated),
			"message": "authentication required",
		})
		return models.Caller{}, false
	}
	return caller, true
}
