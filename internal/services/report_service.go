package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fintrackhq/fintrack/internal/models"
)

// MonthlyReport summarizes one calendar month for the reports page.
type MonthlyReport struct {
	Period      string    `json:"period"`
	Income      float64   `json:"income"`
	Expenses    float64   `json:"expenses"`
	NetSavings  float64   `json:"net_savings"`
	SavingsRate float64   `json:"savings_rate"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// CategoryTotal is one slice of the category breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Icon     string  `json:"icon"`
	Amount   float64 `json:"amount"`
	Count    int64   `json:"count,omitempty"`
}

// TrendPoint is one month of the income-vs-expense trend series.
type TrendPoint struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// ReportService computes financial report aggregates.
type ReportService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(db *gorm.DB) (*ReportService, error) {
	if db == nil {
		return nil, errors.New("report service: db is required")
	}
	return &ReportService{db: db, now: time.Now}, nil
}

// Monthly builds the report for one calendar month.
func (s *ReportService) Monthly(ctx context.Context, userID string, year int, month time.Month) (*MonthlyReport, error) {
	ctx = ensureContext(ctx)
	start, end := monthBounds(year, month)

	income, expenses, err := s.totals(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	net := income - expenses
	return &MonthlyReport{
		Period:      start.Format("January 2006"),
		Income:      income,
		Expenses:    expenses,
		NetSavings:  net,
		SavingsRate: savingsRate(income, net),
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// Yearly builds the report for one calendar year.
func (s *ReportService) Yearly(ctx context.Context, userID string, year int) (*MonthlyReport, error) {
	ctx = ensureContext(ctx)
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)

	income, expenses, err := s.totals(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	net := income - expenses
	return &MonthlyReport{
		Period:      start.Format("2006"),
		Income:      income,
		Expenses:    expenses,
		NetSavings:  net,
		SavingsRate: savingsRate(income, net),
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// CategoryBreakdown sums transactions of one type per category in a window.
func (s *ReportService) CategoryBreakdown(ctx context.Context, userID string, start, end time.Time, transactionType string) ([]CategoryTotal, error) {
	ctx = ensureContext(ctx)
	if transactionType == "" {
		transactionType = models.TransactionTypeExpense
	}
	return s.groupByCategory(ctx, userID, transactionType, start, end, 0)
}

// TopExpenseCategories returns the highest-spend categories in a window.
func (s *ReportService) TopExpenseCategories(ctx context.Context, userID string, start, end time.Time, limit int) ([]CategoryTotal, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 5
	}
	return s.groupByCategory(ctx, userID, models.TransactionTypeExpense, start, end, limit)
}

// IncomeVsExpenseTrend returns per-month totals for the trailing months,
// oldest month first.
func (s *ReportService) IncomeVsExpenseTrend(ctx context.Context, userID string, months int) ([]TrendPoint, error) {
	ctx = ensureContext(ctx)
	if months <= 0 {
		months = 6
	}

	now := s.now().UTC()
	points := make([]TrendPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		anchor := now.AddDate(0, -i, 0)
		start, end := monthBounds(anchor.Year(), anchor.Month())

		income, expenses, err := s.totals(ctx, userID, start, end)
		if err != nil {
			return nil, err
		}
		points = append(points, TrendPoint{
			Month:    start.Format("Jan 2006"),
			Income:   income,
			Expenses: expenses,
			Net:      income - expenses,
		})
	}
	return points, nil
}

func (s *ReportService) totals(ctx context.Context, userID string, start, end time.Time) (income, expenses float64, err error) {
	income, err = s.sumAmount(ctx, userID, models.TransactionTypeIncome, start, end)
	if err != nil {
		return 0, 0, err
	}
	expenses, err = s.sumAmount(ctx, userID, models.TransactionTypeExpense, start, end)
	if err != nil {
		return 0, 0, err
	}
	return income, expenses, nil
}

func (s *ReportService) sumAmount(ctx context.Context, userID, transactionType string, start, end time.Time) (float64, error) {
	var total float64
	if err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND date BETWEEN ? AND ?", userID, transactionType, start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("report service: sum amounts: %w", err)
	}
	return total, nil
}

func (s *ReportService) groupByCategory(ctx context.Context, userID, transactionType string, start, end time.Time, limit int) ([]CategoryTotal, error) {
	type row struct {
		CategoryID string
		Total      float64
		Count      int64
	}

	query := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND date BETWEEN ? AND ?", userID, transactionType, start, end).
		Select("category_id, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("category_id").
		Order("total DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []row
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("report service: category breakdown: %w", err)
	}
	if len(rows) == 0 {
		return []CategoryTotal{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.CategoryID)
	}
	var categories []models.Category
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("report service: load categories: %w", err)
	}
	byID := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	totals := make([]CategoryTotal, 0, len(rows))
	for _, r := range rows {
		c := byID[r.CategoryID]
		totals = append(totals, CategoryTotal{
			Category: c.Name,
			Color:    c.Color,
			Icon:     c.Icon,
			Amount:   r.Total,
			Count:    r.Count,
		})
	}
	return totals, nil
}
