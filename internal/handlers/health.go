package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) Health(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"postgres": "ok", "redis": "ok"}

	dbCtx, dbCancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer dbCancel()
	if err := h.db.Ping(dbCtx); err != nil {
		checks["postgres"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	redisCtx, redisCancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer redisCancel()
	if err := h.cache.Ping(redisCtx).Err(); err != nil {
		checks["redis"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, checks)
}
