package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"scrimhub/internal/apperr"
	"scrimhub/internal/identity"
	"scrimhub/internal/models"
)

const callerContextKey = "caller"

type UserDirectory interface {
	GetByUID(ctx context.Context, uid string) (models.User, error)
}

// Auth verifies the identity provider's bearer token and rejects callers
// whose profile carries an active ban. A missing profile row is tolerated;
// registration can lag behind the first call.
func Auth(provider identity.Provider, users UserDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		caller, err := provider.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		user, err := users.GetByUID(c.Request.Context(), caller.UID)
		if err == nil && user.Disabled {
			if user.BanUntil == nil || user.BanUntil.After(time.Now()) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account_banned"})
				return
			}
		} else if err != nil && !apperr.IsKind(err, apperr.NotFound) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}

		c.Set(callerContextKey, caller)
		c.Next()
	}
}

// CallerFrom returns the verified caller set by Auth.
func CallerFrom(c *gin.Context) (models.Caller, bool) {
	value, exists := c.Get(callerContextKey)
	if !exists {
		return models.Caller{}, false
	}
	caller, ok := value.(models.Caller)
	return caller, ok
}
