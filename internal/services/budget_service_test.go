package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fintrackhq/fintrack/internal/database/testutil"
	"github.com/fintrackhq/fintrack/internal/models"
)

func TestBudgetUtilization(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	userID, categoryID := seedUserAndCategory(t, db)

	svc, err := NewBudgetService(db)
	require.NoError(t, err)
	ctx := context.Background()

	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	budget, err := svc.Create(ctx, CreateBudgetInput{
		UserID: userID, CategoryID: categoryID, Amount: 400,
		Period: models.BudgetPeriodMonthly, StartDate: start, EndDate: end,
	})
	require.NoError(t, err)

	for _, amount := range []float64{100, 50} {
		require.NoError(t, db.Create(&models.Transaction{
			UserID: userID, CategoryID: categoryID,
			Type: models.TransactionTypeExpense, Amount: amount,
			Date: start.AddDate(0, 0, 10),
		}).Error)
	}
	// Outside the window, ignored.
	require.NoError(t, db.Create(&models.Transaction{
		UserID: userID, CategoryID: categoryID,
		Type: models.TransactionTypeExpense, Amount: 999,
		Date: start.AddDate(0, 2, 0),
	}).Error)

	spent, pct, err := svc.Utilization(ctx, *budget)
	require.NoError(t, err)
	require.Equal(t, 150.0, spent)
	require.Equal(t, 37.5, pct)
}

func TestActiveBudgetsOnlyCoverNow(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	userID, categoryID := seedUserAndCategory(t, db)

	svc, err := NewBudgetService(db)
	require.NoError(t, err)
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	_, err = svc.Create(ctx, CreateBudgetInput{
		UserID: userID, CategoryID: categoryID, Amount: 100,
		StartDate: now.AddDate(0, 0, -10), EndDate: now.AddDate(0, 0, 10),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateBudgetInput{
		UserID: userID, CategoryID: categoryID, Amount: 200,
		StartDate: now.AddDate(0, -2, 0), EndDate: now.AddDate(0, -1, 0),
	})
	require.NoError(t, err)

	active, err := svc.ActiveForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, 100.0, active[0].Amount)
	require.NotNil(t, active[0].Category)
}

func TestBudgetCreateValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	userID, categoryID := seedUserAndCategory(t, db)

	svc, err := NewBudgetService(db)
	require.NoError(t, err)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err = svc.Create(ctx, CreateBudgetInput{
		UserID: userID, CategoryID: categoryID, Amount: 0,
		StartDate: now, EndDate: now.AddDate(0, 1, 0),
	})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateBudgetInput{
		UserID: userID, CategoryID: categoryID, Amount: 100,
		StartDate: now, EndDate: now.AddDate(0, -1, 0),
	})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateBudgetInput{
		UserID: userID, CategoryID: categoryID, Amount: 100,
		Period: "daily", StartDate: now, EndDate: now.AddDate(0, 1, 0),
	})
	require.Error(t, err)
}
