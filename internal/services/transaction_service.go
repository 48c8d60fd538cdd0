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
	"github.com/fintrackhq/fintrack/pkg/metrics"
)

// Budget alert thresholds, in percent.
const (
	budgetWarningThreshold  = 80
	budgetExceededThreshold = 100
)

// CreateTransactionInput defines attributes required to persist a transaction.
type CreateTransactionInput struct {
	UserID      string
	CategoryID  string
	Type        string
	Amount      float64
	Description string
	Date        time.Time
}

// UpdateTransactionInput carries optional transaction field updates.
type UpdateTransactionInput struct {
	CategoryID  *string
	Type        *string
	Amount      *float64
	Description *string
	Date        *time.Time
}

// ListTransactionsInput defines filters for querying transactions.
type ListTransactionsInput struct {
	UserID     string
	Type       string
	CategoryID string
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
	Limit      int
	Offset     int
}

// PeriodSummary aggregates transactions over an arbitrary date window.
type PeriodSummary struct {
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	TransactionCount int64     `json:"transaction_count"`
	Income           float64   `json:"income"`
	Expenses         float64   `json:"expenses"`
	NetBalance       float64   `json:"net_balance"`
}

// MonthlySummary aggregates one calendar month of transactions.
type MonthlySummary struct {
	Year             int        `json:"year"`
	Month            time.Month `json:"month"`
	TotalIncome      float64    `json:"total_income"`
	TotalExpenses    float64    `json:"total_expenses"`
	TransactionCount int64      `json:"transaction_count"`
	NetBalance       float64    `json:"net_balance"`
}

// TransactionService manages income and expense entries. Expense writes also
// recompute budget utilization and raise threshold notifications.
type TransactionService struct {
	db      *gorm.DB
	budgets *BudgetService
	alerts  *NotificationService
}

// NewTransactionService constructs a TransactionService.
func NewTransactionService(db *gorm.DB, budgets *BudgetService, alerts *NotificationService) (*TransactionService, error) {
	if db == nil {
		return nil, errors.New("transaction service: db is required")
	}
	return &TransactionService{db: db, budgets: budgets, alerts: alerts}, nil
}

// List returns transactions matching the supplied filters, newest first.
func (s *TransactionService) List(ctx context.Context, input ListTransactionsInput) ([]models.Transaction, error) {
	ctx = ensureContext(ctx)
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("transaction service: user id is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 15
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if input.Type != "" {
		query = query.Where("type = ?", input.Type)
	}
	if input.CategoryID != "" {
		query = query.Where("category_id = ?", input.CategoryID)
	}
	if input.DateFrom != nil {
		query = query.Where("date >= ?", *input.DateFrom)
	}
	if input.DateTo != nil {
		query = query.Where("date <= ?", *input.DateTo)
	}
	if search := strings.TrimSpace(input.Search); search != "" {
		query = query.Where("description LIKE ?", "%"+search+"%")
	}

	var rows []models.Transaction
	if err := query.
		Preload("Category").
		Order("date DESC").
		Limit(limit).
		Offset(max(0, input.Offset)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("transaction service: list transactions: %w", err)
	}
	return rows, nil
}

// Get loads a single transaction owned by the user.
func (s *TransactionService) Get(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	ctx = ensureContext(ctx)

	var row models.Transaction
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", transactionID, userID).
		Preload("Category").
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("transaction service: load transaction: %w", err)
	}
	return &row, nil
}

// Create persists a transaction and, for expenses, checks budget thresholds.
func (s *TransactionService) Create(ctx context.Context, input CreateTransactionInput) (*models.Transaction, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("transaction service: user id is required")
	}
	if input.Amount <= 0 {
		return nil, apperrors.NewBadRequest("Transaction amount must be positive")
	}
	transactionType := strings.TrimSpace(input.Type)
	if transactionType != models.TransactionTypeIncome && transactionType != models.TransactionTypeExpense {
		return nil, apperrors.NewBadRequest("Transaction type must be income or expense")
	}

	row := models.Transaction{
		UserID:      userID,
		CategoryID:  strings.TrimSpace(input.CategoryID),
		Type:        transactionType,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		Date:        input.Date,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("transaction service: create transaction: %w", err)
		}
		if row.Type == models.TransactionTypeExpense {
			return s.checkBudgetThresholds(ctx, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Update applies partial changes to a transaction owned by the user.
func (s *TransactionService) Update(ctx context.Context, userID, transactionID string, input UpdateTransactionInput) (*models.Transaction, error) {
	ctx = ensureContext(ctx)

	row, err := s.Get(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.CategoryID != nil {
		updates["category_id"] = strings.TrimSpace(*input.CategoryID)
		row.CategoryID = strings.TrimSpace(*input.CategoryID)
	}
	if input.Type != nil {
		transactionType := strings.TrimSpace(*input.Type)
		if transactionType != models.TransactionTypeIncome && transactionType != models.TransactionTypeExpense {
			return nil, apperrors.NewBadRequest("Transaction type must be income or expense")
		}
		updates["type"] = transactionType
		row.Type = transactionType
	}
	if input.Amount != nil {
		if *input.Amount <= 0 {
			return nil, apperrors.NewBadRequest("Transaction amount must be positive")
		}
		updates["amount"] = *input.Amount
		row.Amount = *input.Amount
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Date != nil {
		updates["date"] = *input.Date
		row.Date = *input.Date
	}

	if len(updates) == 0 {
		return row, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("id = ?", row.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("transaction service: update transaction: %w", err)
		}
		if row.Type == models.TransactionTypeExpense {
			return s.checkBudgetThresholds(ctx, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Delete removes a transaction owned by the user.
func (s *TransactionService) Delete(ctx context.Context, userID, transactionID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", transactionID, userID).
		Delete(&models.Transaction{})
	if result.Error != nil {
		return fmt.Errorf("transaction service: delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MonthlySummary aggregates one calendar month of the user's transactions.
func (s *TransactionService) MonthlySummary(ctx context.Context, userID string, year int, month time.Month) (*MonthlySummary, error) {
	ctx = ensureContext(ctx)
	start, end := monthBounds(year, month)

	summary, err := s.summarize(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	return &MonthlySummary{
		Year:             year,
		Month:            month,
		TotalIncome:      summary.Income,
		TotalExpenses:    summary.Expenses,
		TransactionCount: summary.TransactionCount,
		NetBalance:       summary.NetBalance,
	}, nil
}

// DailySummary aggregates a single day of the user's transactions.
func (s *TransactionService) DailySummary(ctx context.Context, userID string, date time.Time) (*PeriodSummary, error) {
	start, end := dayBounds(date)
	return s.summarize(ensureContext(ctx), userID, start, end)
}

// WeeklySummary aggregates the Monday-to-Sunday week containing date.
func (s *TransactionService) WeeklySummary(ctx context.Context, userID string, date time.Time) (*PeriodSummary, error) {
	start, end := weekBounds(date)
	return s.summarize(ensureContext(ctx), userID, start, end)
}

func (s *TransactionService) summarize(ctx context.Context, userID string, start, end time.Time) (*PeriodSummary, error) {
	income, err := s.sumAmount(ctx, userID, models.TransactionTypeIncome, start, end)
	if err != nil {
		return nil, err
	}
	expenses, err := s.sumAmount(ctx, userID, models.TransactionTypeExpense, start, end)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("transaction service: count transactions: %w", err)
	}

	return &PeriodSummary{
		Start:            start,
		End:              end,
		TransactionCount: count,
		Income:           income,
		Expenses:         expenses,
		NetBalance:       income - expenses,
	}, nil
}

func (s *TransactionService) sumAmount(ctx context.Context, userID, transactionType string, start, end time.Time) (float64, error) {
	var total float64
	if err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND date BETWEEN ? AND ?", userID, transactionType, start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("transaction service: sum amounts: %w", err)
	}
	return total, nil
}

// checkBudgetThresholds raises warning/exceeded notifications for budgets
// covering the transaction. Each budget window gets each alert at most once.
func (s *TransactionService) checkBudgetThresholds(ctx context.Context, row models.Transaction) error {
	if s.budgets == nil || s.alerts == nil {
		return nil
	}

	budgets, err := s.budgets.CoveringBudgets(ctx, row.UserID, row.CategoryID, row.Date)
	if err != nil {
		return err
	}

	for _, budget := range budgets {
		spent, pct, err := s.budgets.Utilization(ctx, budget)
		if err != nil {
			return err
		}

		categoryName := budget.CategoryID
		if budget.Category != nil {
			categoryName = budget.Category.Name
		}

		switch {
		case pct >= budgetExceededThreshold:
			if err := s.raiseBudgetAlert(ctx, budget, models.NotificationBudgetExceeded,
				"Budget Exceeded: "+categoryName,
				fmt.Sprintf("You have exceeded your %s budget for %s. You've spent %.2f of your %.2f budget (%.1f%%).",
					budget.Period, categoryName, spent, budget.Amount, pct)); err != nil {
				return err
			}
		case pct >= budgetWarningThreshold:
			if err := s.raiseBudgetAlert(ctx, budget, models.NotificationBudgetWarning,
				"Budget Warning: "+categoryName,
				fmt.Sprintf("You are approaching your %s budget limit for %s. You've spent %.2f of your %.2f budget (%.1f%%).",
					budget.Period, categoryName, spent, budget.Amount, pct)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *TransactionService) raiseBudgetAlert(ctx context.Context, budget models.Budget, alertType, title, message string) error {
	// One alert of each kind per budget window.
	var existing int64
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND created_at BETWEEN ? AND ?",
			budget.UserID, alertType, budget.StartDate, budget.EndDate).
		Where("metadata LIKE ?", "%"+budget.ID+"%").
		Count(&existing).Error; err != nil {
		return fmt.Errorf("transaction service: check existing alert: %w", err)
	}
	if existing > 0 {
		return nil
	}

	_, err := s.alerts.Create(ctx, CreateNotificationInput{
		UserID:  budget.UserID,
		Type:    alertType,
		Title:   title,
		Message: message,
		Metadata: map[string]any{
			"budget_id":   budget.ID,
			"category_id": budget.CategoryID,
		},
	})
	if err != nil {
		return err
	}

	kind := "warning"
	if alertType == models.NotificationBudgetExceeded {
		kind = "exceeded"
	}
	metrics.BudgetAlerts.WithLabelValues(kind).Inc()
	return nil
}
