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

// GoalHandler exposes HTTP endpoints for savings goals.
type GoalHandler struct {
	service *services.GoalService
	cache   *services.CacheService
}

// NewGoalHandler constructs a goal handler.
func NewGoalHandler(service *services.GoalService, cache *services.CacheService) *GoalHandler {
	return &GoalHandler{service: service, cache: cache}
}

// List returns every goal owned by the current user.
func (h *GoalHandler) List(c *gin.Context) {
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

// Active returns the cached active goal list with progress.
func (h *GoalHandler) Active(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := h.cache.GetActiveGoals(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

type goalPayload struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	TargetAmount float64 `json:"target_amount"`
	TargetDate   string  `json:"target_date"`
}

// Create registers a new goal.
func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload goalPayload
	if !bindJSON(c, &payload) {
		return
	}
	targetDate, err := time.ParseInLocation(dateLayout, strings.TrimSpace(payload.TargetDate), time.UTC)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid target_date, expected YYYY-MM-DD"))
		return
	}

	item, err := h.service.Create(requestContext(c), services.CreateGoalInput{
		UserID:       userID,
		Name:         payload.Name,
		Description:  payload.Description,
		TargetAmount: payload.TargetAmount,
		TargetDate:   targetDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidate(c, userID)
	response.Success(c, http.StatusCreated, item)
}

// Update applies partial changes to a goal.
func (h *GoalHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload struct {
		Name         *string  `json:"name"`
		Description  *string  `json:"description"`
		TargetAmount *float64 `json:"target_amount"`
		TargetDate   *string  `json:"target_date"`
		Status       *string  `json:"status"`
	}
	if !bindJSON(c, &payload) {
		return
	}

	input := services.UpdateGoalInput{
		Name:         payload.Name,
		Description:  payload.Description,
		TargetAmount: payload.TargetAmount,
		Status:       payload.Status,
	}
	if payload.TargetDate != nil {
		parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(*payload.TargetDate), time.UTC)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("invalid target_date, expected YYYY-MM-DD"))
			return
		}
		input.TargetDate = &parsed
	}

	item, err := h.service.Update(requestContext(c), userID, strings.TrimSpace(c.Param("id")), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidate(c, userID)
	response.Success(c, http.StatusOK, item)
}

// Contribute adds to a goal's saved amount.
func (h *GoalHandler) Contribute(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload struct {
		Amount float64 `json:"amount"`
	}
	if !bindJSON(c, &payload) {
		return
	}

	item, err := h.service.Contribute(requestContext(c), userID, strings.TrimSpace(c.Param("id")), payload.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidate(c, userID)
	// Completion may have raised a goal_completed notification.
	h.cache.ClearNotificationsCache(requestContext(c), userID)
	response.Success(c, http.StatusOK, item)
}

// Delete removes a goal.
func (h *GoalHandler) Delete(c *gin.Context) {
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

func (h *GoalHandler) invalidate(c *gin.Context, userID string) {
	h.cache.ClearGoalsCache(requestContext(c), userID)
	h.cache.ClearDashboardCache(requestContext(c), userID)
}
