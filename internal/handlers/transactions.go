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

// TransactionHandler exposes HTTP endpoints for transactions.
type TransactionHandler struct {
	service *services.TransactionService
	cache   *services.CacheService
}

// NewTransactionHandler constructs a transaction handler.
func NewTransactionHandler(service *services.TransactionService, cache *services.CacheService) *TransactionHandler {
	return &TransactionHandler{service: service, cache: cache}
}

// List returns transactions for the current user with optional filters.
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}

	items, err := h.service.List(requestContext(c), services.ListTransactionsInput{
		UserID:     userID,
		Type:       strings.TrimSpace(c.Query("type")),
		CategoryID: strings.TrimSpace(c.Query("category_id")),
		DateFrom:   from,
		DateTo:     to,
		Search:     c.Query("search"),
		Limit:      parseIntQuery(c, "limit", 15),
		Offset:     parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Get returns a single transaction.
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	item, err := h.service.Get(requestContext(c), userID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Summary returns the cached monthly transaction summary.
func (h *TransactionHandler) Summary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	year, month, ok := parseYearMonth(c)
	if !ok {
		return
	}

	summary, err := h.cache.GetTransactionSummary(requestContext(c), userID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

type transactionPayload struct {
	CategoryID  string  `json:"category_id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

// Create records a new transaction and invalidates the derived caches.
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload transactionPayload
	if !bindJSON(c, &payload) {
		return
	}
	date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(payload.Date), time.UTC)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid date, expected YYYY-MM-DD"))
		return
	}

	item, err := h.service.Create(requestContext(c), services.CreateTransactionInput{
		UserID:      userID,
		CategoryID:  payload.CategoryID,
		Type:        payload.Type,
		Amount:      payload.Amount,
		Description: payload.Description,
		Date:        date,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.cache.ClearTransactionCacheAt(requestContext(c), userID, item.Date)
	h.cache.ClearBudgetsCache(requestContext(c), userID)
	h.cache.ClearNotificationsCache(requestContext(c), userID)
	response.Success(c, http.StatusCreated, item)
}

// Update applies partial changes to a transaction.
func (h *TransactionHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	// Load first so the old month can be invalidated when the date moves.
	existing, err := h.service.Get(requestContext(c), userID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	oldDate := existing.Date

	var payload struct {
		CategoryID  *string  `json:"category_id"`
		Type        *string  `json:"type"`
		Amount      *float64 `json:"amount"`
		Description *string  `json:"description"`
		Date        *string  `json:"date"`
	}
	if !bindJSON(c, &payload) {
		return
	}

	input := services.UpdateTransactionInput{
		CategoryID:  payload.CategoryID,
		Type:        payload.Type,
		Amount:      payload.Amount,
		Description: payload.Description,
	}
	if payload.Date != nil {
		parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(*payload.Date), time.UTC)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("invalid date, expected YYYY-MM-DD"))
			return
		}
		input.Date = &parsed
	}

	item, err := h.service.Update(requestContext(c), userID, existing.ID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.cache.ClearTransactionCacheAt(requestContext(c), userID, oldDate)
	if !item.Date.Equal(oldDate) {
		h.cache.ClearTransactionCacheAt(requestContext(c), userID, item.Date)
	}
	h.cache.ClearBudgetsCache(requestContext(c), userID)
	h.cache.ClearNotificationsCache(requestContext(c), userID)
	response.Success(c, http.StatusOK, item)
}

// Delete removes a transaction.
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	existing, err := h.service.Get(requestContext(c), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Delete(requestContext(c), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	h.cache.ClearTransactionCacheAt(requestContext(c), userID, existing.Date)
	h.cache.ClearBudgetsCache(requestContext(c), userID)
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
