package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrackhq/fintrack/internal/services"
	appErrors "github.com/fintrackhq/fintrack/pkg/errors"
	"github.com/fintrackhq/fintrack/pkg/response"
)

// ReportHandler exposes HTTP endpoints for financial reports.
type ReportHandler struct {
	service *services.ReportService
	cache   *services.CacheService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(service *services.ReportService, cache *services.CacheService) *ReportHandler {
	return &ReportHandler{service: service, cache: cache}
}

// Monthly returns the cached monthly report.
func (h *ReportHandler) Monthly(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	year, month, ok := parseYearMonth(c)
	if !ok {
		return
	}

	report, err := h.cache.GetMonthlyReport(requestContext(c), userID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// Yearly returns the yearly report. Computed directly; the yearly view is an
// infrequent page and not worth its own cache region.
func (h *ReportHandler) Yearly(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	report, err := h.service.Yearly(requestContext(c), userID, parseIntQuery(c, "year", time.Now().UTC().Year()))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// CategoryBreakdown returns per-category totals in a date window.
func (h *ReportHandler) CategoryBreakdown(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	start, end, ok := h.window(c)
	if !ok {
		return
	}

	items, err := h.service.CategoryBreakdown(requestContext(c), userID, start, end, c.Query("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// TopExpenses returns the highest-spend categories in a date window.
func (h *ReportHandler) TopExpenses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	start, end, ok := h.window(c)
	if !ok {
		return
	}

	items, err := h.service.TopExpenseCategories(requestContext(c), userID, start, end, parseIntQuery(c, "limit", 5))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Trend returns the income-vs-expense trend for the trailing months.
func (h *ReportHandler) Trend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	points, err := h.service.IncomeVsExpenseTrend(requestContext(c), userID, parseIntQuery(c, "months", 6))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, points)
}

// window resolves from/to query dates, defaulting to the current month.
func (h *ReportHandler) window(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := parseDateQuery(c, "from")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	if from != nil {
		start = *from
	}
	if to != nil {
		end = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if end.Before(start) {
		response.Error(c, appErrors.NewBadRequest("to must not precede from"))
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
