package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrackhq/fintrack/internal/services"
)

// CacheInvalidate drops every per-user cache entry after a successful
// mutating request. This blanket pass runs after the handler chain commits,
// so a reader never observes an entry older than the write. Handlers still
// issue the narrow per-region clears; this catches whatever they miss.
func CacheInvalidate(cacheSvc *services.CacheService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		userID := c.GetString(CtxUserIDKey)
		if userID == "" {
			return
		}
		cacheSvc.ClearAllUserCache(c.Request.Context(), userID)
	}
}
