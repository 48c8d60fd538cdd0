package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrackhq/fintrack/internal/services"
	"github.com/fintrackhq/fintrack/pkg/response"
)

// DashboardHandler serves the cached dashboard payloads.
type DashboardHandler struct {
	cache *services.CacheService
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(cache *services.CacheService) *DashboardHandler {
	return &DashboardHandler{cache: cache}
}

// Show returns the cached dashboard snapshot.
func (h *DashboardHandler) Show(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	snapshot, err := h.cache.GetDashboard(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, snapshot)
}

// MonthlyStats returns the cached current-month statistics.
func (h *DashboardHandler) MonthlyStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.cache.GetMonthlyStats(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// CurrencyRates returns the cached global rate table.
func (h *DashboardHandler) CurrencyRates(c *gin.Context) {
	rates, err := h.cache.GetCurrencyRates(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rates)
}
