package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrackhq/fintrack/internal/services"
	"github.com/fintrackhq/fintrack/pkg/response"
)

// ProfileHandler exposes HTTP endpoints for the user profile.
type ProfileHandler struct {
	service *services.UserService
	cache   *services.CacheService
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(service *services.UserService, cache *services.CacheService) *ProfileHandler {
	return &ProfileHandler{service: service, cache: cache}
}

// Show returns the cached profile for the current user.
func (h *ProfileHandler) Show(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.cache.GetUserProfile(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// Update applies partial profile changes.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload struct {
		Name     *string `json:"name"`
		Currency *string `json:"currency"`
	}
	if !bindJSON(c, &payload) {
		return
	}

	user, err := h.service.UpdateProfile(requestContext(c), userID, services.UpdateProfileInput{
		Name:     payload.Name,
		Currency: payload.Currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.cache.ClearUserProfileCache(requestContext(c), userID)
	// Display currency shapes the dashboard payload.
	h.cache.ClearDashboardCache(requestContext(c), userID)
	response.Success(c, http.StatusOK, user)
}
