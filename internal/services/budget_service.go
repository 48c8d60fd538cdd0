package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fintrackhq/fintrack/internal/models"
	apperrors "github.com/fintrackhq/fintrack/pkg/errors"
)

// BudgetStatus is a budget together with its spend-to-date utilization.
type BudgetStatus struct {
	models.Budget
	Spent       float64 `json:"spent"`
	Utilization float64 `json:"utilization"`
}

// CreateBudgetInput defines attributes required to persist a budget.
type CreateBudgetInput struct {
	UserID     string
	CategoryID string
	Amount     float64
	Period     string
	StartDate  time.Time
	EndDate    time.Time
}

// UpdateBudgetInput carries optional budget field updates.
type UpdateBudgetInput struct {
	Amount    *float64
	StartDate *time.Time
	EndDate   *time.Time
}

// BudgetService manages spending budgets and their utilization.
type BudgetService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBudgetService constructs a BudgetService.
func NewBudgetService(db *gorm.DB) (*BudgetService, error) {
	if db == nil {
		return nil, errors.New("budget service: db is required")
	}
	return &BudgetService{db: db, now: time.Now}, nil
}

// ListForUser returns every budget owned by the user with its category preloaded.
func (s *BudgetService) ListForUser(ctx context.Context, userID string) ([]models.Budget, error) {
	ctx = ensureContext(ctx)

	var rows []models.Budget
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Category").
		Order("start_date DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("budget service: list budgets: %w", err)
	}
	return rows, nil
}

// ActiveForUser returns budgets whose window covers now, each carrying its
// parent category and current utilization.
func (s *BudgetService) ActiveForUser(ctx context.Context, userID string) ([]BudgetStatus, error) {
	ctx = ensureContext(ctx)
	now := s.now().UTC()

	var rows []models.Budget
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND start_date <= ? AND end_date >= ?", userID, now, now).
		Preload("Category").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("budget service: list active budgets: %w", err)
	}

	statuses := make([]BudgetStatus, 0, len(rows))
	for _, row := range rows {
		spent, err := s.spentInWindow(ctx, row)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, BudgetStatus{
			Budget:      row,
			Spent:       spent,
			Utilization: utilization(spent, row.Amount),
		})
	}
	return statuses, nil
}

// Utilization recomputes the spend percentage for one budget.
func (s *BudgetService) Utilization(ctx context.Context, budget models.Budget) (float64, float64, error) {
	spent, err := s.spentInWindow(ensureContext(ctx), budget)
	if err != nil {
		return 0, 0, err
	}
	return spent, utilization(spent, budget.Amount), nil
}

// CoveringBudgets returns the user's budgets for a category whose window
// includes the supplied date. Used by the transaction write path.
func (s *BudgetService) CoveringBudgets(ctx context.Context, userID, categoryID string, date time.Time) ([]models.Budget, error) {
	ctx = ensureContext(ctx)

	var rows []models.Budget
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND category_id = ? AND start_date <= ? AND end_date >= ?", userID, categoryID, date, date).
		Preload("Category").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("budget service: covering budgets: %w", err)
	}
	return rows, nil
}

// Create registers a new budget.
func (s *BudgetService) Create(ctx context.Context, input CreateBudgetInput) (*models.Budget, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("budget service: user id is required")
	}
	if input.Amount <= 0 {
		return nil, apperrors.NewBadRequest("Budget amount must be positive")
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, apperrors.NewBadRequest("Budget end date must not precede start date")
	}

	period := defaultIfEmpty(input.Period, models.BudgetPeriodMonthly)
	if period != models.BudgetPeriodMonthly && period != models.BudgetPeriodWeekly {
		return nil, apperrors.NewBadRequest("Budget period must be weekly or monthly")
	}

	row := models.Budget{
		UserID:     userID,
		CategoryID: strings.TrimSpace(input.CategoryID),
		Amount:     input.Amount,
		Period:     period,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("budget service: create budget: %w", err)
	}
	return &row, nil
}

// Update applies partial changes to a budget owned by the user.
func (s *BudgetService) Update(ctx context.Context, userID, budgetID string, input UpdateBudgetInput) (*models.Budget, error) {
	ctx = ensureContext(ctx)

	var row models.Budget
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("budget service: load budget: %w", err)
	}

	updates := map[string]any{}
	if input.Amount != nil {
		if *input.Amount <= 0 {
			return nil, apperrors.NewBadRequest("Budget amount must be positive")
		}
		updates["amount"] = *input.Amount
	}
	if input.StartDate != nil {
		updates["start_date"] = *input.StartDate
	}
	if input.EndDate != nil {
		updates["end_date"] = *input.EndDate
	}

	if len(updates) == 0 {
		return &row, nil
	}

	if err := s.db.WithContext(ctx).Model(&row).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("budget service: update budget: %w", err)
	}
	return &row, nil
}

// Delete removes a budget owned by the user.
func (s *BudgetService) Delete(ctx context.Context, userID, budgetID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", budgetID, userID).
		Delete(&models.Budget{})
	if result.Error != nil {
		return fmt.Errorf("budget service: delete budget: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *BudgetService) spentInWindow(ctx context.Context, budget models.Budget) (float64, error) {
	var spent float64
	if err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND category_id = ? AND type = ? AND date BETWEEN ? AND ?",
			budget.UserID, budget.CategoryID, models.TransactionTypeExpense, budget.StartDate, budget.EndDate).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&spent).Error; err != nil {
		return 0, fmt.Errorf("budget service: sum spend: %w", err)
	}
	return spent, nil
}

func utilization(spent, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	return spent / amount * 100
}
