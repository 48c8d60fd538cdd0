package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fintrackhq/fintrack/internal/services"
	appErrors "github.com/fintrackhq/fintrack/pkg/errors"
	"github.com/fintrackhq/fintrack/pkg/response"
)

// AdminCacheHandler exposes operational cache endpoints.
type AdminCacheHandler struct {
	cache *services.CacheService
}

// NewAdminCacheHandler constructs the admin cache handler.
func NewAdminCacheHandler(cache *services.CacheService) *AdminCacheHandler {
	return &AdminCacheHandler{cache: cache}
}

// Flush empties the entire cache store.
func (h *AdminCacheHandler) Flush(c *gin.Context) {
	if err := h.cache.FlushAll(requestContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"flushed": true})
}

// Warm precomputes the hot cache regions for one user.
func (h *AdminCacheHandler) Warm(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		response.Error(c, appErrors.NewBadRequest("user id is required"))
		return
	}

	if err := h.cache.WarmUserCache(requestContext(c), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"warmed": true})
}
