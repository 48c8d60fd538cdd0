package models

import "time"

// Budget periods.
const (
	BudgetPeriodWeekly  = "weekly"
	BudgetPeriodMonthly = "monthly"
)

// Budget caps expense spending for one category over a date window.
type Budget struct {
	BaseModel
	UserID     string    `gorm:"type:uuid;index:idx_budgets_user_dates;not null" json:"user_id"`
	CategoryID string    `gorm:"type:uuid;index;not null" json:"category_id"`
	Amount     float64   `gorm:"not null" json:"amount"`
	Period     string    `gorm:"size:16;default:monthly" json:"period"`
	StartDate  time.Time `gorm:"index:idx_budgets_user_dates;not null" json:"start_date"`
	EndDate    time.Time `gorm:"index:idx_budgets_user_dates;not null" json:"end_date"`

	Category *Category `json:"category,omitempty"`
}

// Covers reports whether the budget window includes the given instant.
func (b Budget) Covers(t time.Time) bool {
	return !t.Before(b.StartDate) && !t.After(b.EndDate)
}
