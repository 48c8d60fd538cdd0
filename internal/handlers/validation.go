package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/fintrackhq/fintrack/pkg/errors"
	"github.com/fintrackhq/fintrack/pkg/response"
)

const dateLayout = "2006-01-02"

func bindJSON[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}
	return true
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, true
	}
	parsed, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid "+key+" date, expected YYYY-MM-DD"))
		return nil, false
	}
	return &parsed, true
}

// parseYearMonth resolves year/month query parameters, defaulting to the
// current UTC month.
func parseYearMonth(c *gin.Context) (int, time.Month, bool) {
	now := time.Now().UTC()
	year := parseIntQuery(c, "year", now.Year())
	month := parseIntQuery(c, "month", int(now.Month()))
	if month < 1 || month > 12 {
		response.Error(c, appErrors.NewBadRequest("month must be between 1 and 12"))
		return 0, 0, false
	}
	return year, time.Month(month), true
}
