package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/fintrackhq/fintrack/internal/models"
)

// MonthlyStats summarizes the current month for the dashboard.
type MonthlyStats struct {
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	NetSavings  float64 `json:"net_savings"`
	SavingsRate float64 `json:"savings_rate"`
}

// QuickStats holds all-time entity counts shown on the dashboard.
type QuickStats struct {
	TotalTransactions int64 `json:"total_transactions"`
	TotalBudgets      int64 `json:"total_budgets"`
	TotalGoals        int64 `json:"total_goals"`
	ActiveGoals       int64 `json:"active_goals"`
}

// SpendingPoint is one day of the spending trend series.
type SpendingPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// DashboardSnapshot is the full dashboard payload the cache layer stores.
type DashboardSnapshot struct {
	MonthlyStats       MonthlyStats         `json:"monthly_stats"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
	ActiveBudgets      []BudgetStatus       `json:"active_budgets"`
	ActiveGoals        []GoalStatus         `json:"active_goals"`
	NetWorth           float64              `json:"net_worth"`
	QuickStats         QuickStats           `json:"quick_stats"`
	SpendingTrend      []SpendingPoint      `json:"spending_trend"`
}

// DashboardService composes the dashboard payload from the domain services.
type DashboardService struct {
	db      *gorm.DB
	budgets *BudgetService
	goals   *GoalService
	now     func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(db *gorm.DB, budgets *BudgetService, goals *GoalService) (*DashboardService, error) {
	if db == nil {
		return nil, errors.New("dashboard service: db is required")
	}
	if budgets == nil || goals == nil {
		return nil, errors.New("dashboard service: budget and goal services are required")
	}
	return &DashboardService{db: db, budgets: budgets, goals: goals, now: time.Now}, nil
}

// MonthlyStats aggregates the current calendar month.
func (s *DashboardService) MonthlyStats(ctx context.Context, userID string) (*MonthlyStats, error) {
	ctx = ensureContext(ctx)
	now := s.now().UTC()
	start, end := monthBounds(now.Year(), now.Month())

	income, err := s.sumAmount(ctx, userID, models.TransactionTypeIncome, &start, &end)
	if err != nil {
		return nil, err
	}
	expenses, err := s.sumAmount(ctx, userID, models.TransactionTypeExpense, &start, &end)
	if err != nil {
		return nil, err
	}

	net := income - expenses
	return &MonthlyStats{
		Income:      income,
		Expenses:    expenses,
		NetSavings:  net,
		SavingsRate: savingsRate(income, net),
	}, nil
}

// RecentTransactions returns the user's latest transactions with categories.
func (s *DashboardService) RecentTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 10
	}

	var rows []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Category").
		Order("date DESC, created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("dashboard service: recent transactions: %w", err)
	}
	return rows, nil
}

// NetWorth is total income minus total expenses over all time.
func (s *DashboardService) NetWorth(ctx context.Context, userID string) (float64, error) {
	ctx = ensureContext(ctx)

	income, err := s.sumAmount(ctx, userID, models.TransactionTypeIncome, nil, nil)
	if err != nil {
		return 0, err
	}
	expenses, err := s.sumAmount(ctx, userID, models.TransactionTypeExpense, nil, nil)
	if err != nil {
		return 0, err
	}
	return income - expenses, nil
}

// QuickStats returns all-time entity counts for the user.
func (s *DashboardService) QuickStats(ctx context.Context, userID string) (*QuickStats, error) {
	ctx = ensureContext(ctx)

	stats := QuickStats{}
	counts := []struct {
		model any
		query map[string]any
		dest  *int64
	}{
		{&models.Transaction{}, map[string]any{"user_id": userID}, &stats.TotalTransactions},
		{&models.Budget{}, map[string]any{"user_id": userID}, &stats.TotalBudgets},
		{&models.Goal{}, map[string]any{"user_id": userID}, &stats.TotalGoals},
		{&models.Goal{}, map[string]any{"user_id": userID, "status": models.GoalStatusActive}, &stats.ActiveGoals},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(c.model).Where(c.query).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("dashboard service: quick stats: %w", err)
		}
	}
	return &stats, nil
}

// SpendingTrend returns daily expense totals for the trailing window,
// oldest day first.
func (s *DashboardService) SpendingTrend(ctx context.Context, userID string, days int) ([]SpendingPoint, error) {
	ctx = ensureContext(ctx)
	if days <= 0 {
		days = 7
	}

	today := s.now().UTC()
	points := make([]SpendingPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		start, end := dayBounds(day)

		amount, err := s.sumAmount(ctx, userID, models.TransactionTypeExpense, &start, &end)
		if err != nil {
			return nil, err
		}
		points = append(points, SpendingPoint{
			Date:   day.Format("Jan 02"),
			Amount: amount,
		})
	}
	return points, nil
}

// Snapshot composes the complete dashboard payload.
func (s *DashboardService) Snapshot(ctx context.Context, userID string) (*DashboardSnapshot, error) {
	ctx = ensureContext(ctx)

	stats, err := s.MonthlyStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.RecentTransactions(ctx, userID, 10)
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgets.ActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	goals, err := s.goals.ActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(goals) > 5 {
		goals = goals[:5]
	}
	netWorth, err := s.NetWorth(ctx, userID)
	if err != nil {
		return nil, err
	}
	quick, err := s.QuickStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	trend, err := s.SpendingTrend(ctx, userID, 7)
	if err != nil {
		return nil, err
	}

	return &DashboardSnapshot{
		MonthlyStats:       *stats,
		RecentTransactions: recent,
		ActiveBudgets:      budgets,
		ActiveGoals:        goals,
		NetWorth:           netWorth,
		QuickStats:         *quick,
		SpendingTrend:      trend,
	}, nil
}

func (s *DashboardService) sumAmount(ctx context.Context, userID, transactionType string, start, end *time.Time) (float64, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", userID, transactionType)
	if start != nil && end != nil {
		query = query.Where("date BETWEEN ? AND ?", *start, *end)
	}

	var total float64
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("dashboard service: sum amounts: %w", err)
	}
	return total, nil
}

func savingsRate(income, net float64) float64 {
	if income <= 0 {
		return 0
	}
	return math.Round(net/income*100*100) / 100
}
