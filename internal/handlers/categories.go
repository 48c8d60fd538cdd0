package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fintrackhq/fintrack/internal/services"
	"github.com/fintrackhq/fintrack/pkg/response"
)

// CategoryHandler exposes HTTP endpoints for categories.
type CategoryHandler struct {
	service *services.CategoryService
	cache   *services.CacheService
}

// NewCategoryHandler constructs a category handler.
func NewCategoryHandler(service *services.CategoryService, cache *services.CacheService) *CategoryHandler {
	return &CategoryHandler{service: service, cache: cache}
}

// List returns the cached category list for the current user.
func (h *CategoryHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := h.cache.GetCategories(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

type categoryPayload struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Create registers a new category.
func (h *CategoryHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload categoryPayload
	if !bindJSON(c, &payload) {
		return
	}

	item, err := h.service.Create(requestContext(c), services.CreateCategoryInput{
		UserID: userID,
		Name:   payload.Name,
		Type:   payload.Type,
		Color:  payload.Color,
		Icon:   payload.Icon,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidate(c, userID)
	response.Success(c, http.StatusCreated, item)
}

// Update applies partial changes to a category.
func (h *CategoryHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
		Icon  *string `json:"icon"`
	}
	if !bindJSON(c, &payload) {
		return
	}

	item, err := h.service.Update(requestContext(c), userID, strings.TrimSpace(c.Param("id")), services.UpdateCategoryInput{
		Name:  payload.Name,
		Color: payload.Color,
		Icon:  payload.Icon,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidate(c, userID)
	response.Success(c, http.StatusOK, item)
}

// Delete removes a category.
func (h *CategoryHandler) Delete(c *gin.Context) {
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

// Category mutations also reshape the dashboard's category-tagged payloads.
func (h *CategoryHandler) invalidate(c *gin.Context, userID string) {
	h.cache.ClearCategoriesCache(requestContext(c), userID)
	h.cache.ClearDashboardCache(requestContext(c), userID)
}
