package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrackhq/fintrack/internal/services"
	appErrors "github.com/fintrackhq/fintrack/pkg/errors"
	"github.com/fintrackhq/fintrack/pkg/response"
)

// BudgetHandler exposes HTTP endpoints for budgets.
type BudgetHandler struct {
	service *services.BudgetService
	cache   *services.CacheService
}

// NewBudgetHandler constructs a budget handler.
func NewBudgetHandler(service *services.BudgetService, cache *services.CacheService) *BudgetHandler {
	return &BudgetHandler{service: service, cache: cache}
}

// List returns every budget owned by the current user.
func (h *BudgetHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := h.service.ListForUser(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Active returns the cached active budget list with utilization.
func (h *BudgetHandler) Active(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := h.cache.GetActiveBudgets(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

type budgetPayload struct {
	CategoryID string  `json:"category_id"`
	Amount     float64 `json:"amount"`
	Period     string  `json:"period"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
}

// Create registers a new budget.
func (h *BudgetHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload budgetPayload
	if !bindJSON(c, &payload) {
		return
	}
	start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(payload.StartDate), time.UTC)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid start_date, expected YYYY-MM-DD"))
		return
	}
	end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(payload.EndDate), time.UTC)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid end_date, expected YYYY-MM-DD"))
		return
	}

	item, err := h.service.Create(requestContext(c), services.CreateBudgetInput{
		UserID:     userID,
		CategoryID: payload.CategoryID,
		Amount:     payload.Amount,
		Period:     payload.Period,
		StartDate:  start,
		EndDate:    end.AddDate(0, 0, 1).Add(-time.Nanosecond),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidate(c, userID)
	response.Success(c, http.StatusCreated, item)
}

// Update applies partial changes to a budget.
func (h *BudgetHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload struct {
		Amount    *float64 `json:"amount"`
		StartDate *string  `json:"start_date"`
		EndDate   *string  `json:"end_date"`
	}
	if !bindJSON(c, &payload) {
		return
	}

	input := services.UpdateBudgetInput{Amount: payload.Amount}
	if payload.StartDate != nil {
		parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(*payload.StartDate), time.UTC)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("invalid start_date, expected YYYY-MM-DD"))
			return
		}
		input.StartDate = &parsed
	}
	if payload.EndDate != nil {
		parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(*payload.EndDate), time.UTC)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("invalid end_date, expected YYYY-MM-DD"))
			return
		}
		endOfDay := parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
		input.EndDate = &endOfDay
	}

	item, err := h.service.Update(requestContext(c), userID, strings.TrimSpace(c.Param("id")), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidate(c, userID)
	response.Success(c, http.StatusOK, item)
}

// Delete removes a budget.
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(requestContext(c), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}

	h.invalidate(c, userID)
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *BudgetHandler) invalidate(c *gin.Context, userID string) {
	h.cache.ClearBudgetsCache(requestContext(c), userID)
	h.cache.ClearDashboardCache(requestContext(c), userID)
}
