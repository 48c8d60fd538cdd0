package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fintrackhq/fintrack/internal/database/testutil"
	"github.com/fintrackhq/fintrack/internal/models"
)

func TestMonthlyReportTotals(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	userID, categoryID := seedUserAndCategory(t, db)

	svc, err := NewReportService(db)
	require.NoError(t, err)
	ctx := context.Background()

	june := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.Transaction{
		UserID: userID, CategoryID: categoryID,
		Type: models.TransactionTypeIncome, Amount: 4000, Date: june,
	}).Error)
	require.NoError(t, db.Create(&models.Transaction{
		UserID: userID, CategoryID: categoryID,
		Type: models.TransactionTypeExpense, Amount: 1000, Date: june,
	}).Error)

	report, err := svc.Monthly(ctx, userID, 2025, time.June)
	require.NoError(t, err)
	require.Equal(t, "June 2025", report.Period)
	require.Equal(t, 4000.0, report.Income)
	require.Equal(t, 1000.0, report.Expenses)
	require.Equal(t, 3000.0, report.NetSavings)
	require.Equal(t, 75.0, report.SavingsRate)
}

func TestCategoryBreakdownGroupsAndOrders(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	userID, groceriesID := seedUserAndCategory(t, db)

	rent := models.Category{UserID: userID, Name: "Rent", Type: models.CategoryTypeExpense}
	require.NoError(t, db.Create(&rent).Error)

	svc, err := NewReportService(db)
	require.NoError(t, err)
	ctx := context.Background()

	june := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	for _, row := range []struct {
		categoryID string
		amount     float64
	}{
		{groceriesID, 120},
		{groceriesID, 80},
		{rent.ID, 900},
	} {
		require.NoError(t, db.Create(&models.Transaction{
			UserID: userID, CategoryID: row.categoryID,
			Type: models.TransactionTypeExpense, Amount: row.amount, Date: june,
		}).Error)
	}

	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	breakdown, err := svc.CategoryBreakdown(ctx, userID, start, end, "")
	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	require.Equal(t, "Rent", breakdown[0].Category)
	require.Equal(t, 900.0, breakdown[0].Amount)
	require.Equal(t, "Groceries", breakdown[1].Category)
	require.Equal(t, 200.0, breakdown[1].Amount)
	require.EqualValues(t, 2, breakdown[1].Count)

	top, err := svc.TopExpenseCategories(ctx, userID, start, end, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "Rent", top[0].Category)
}

func TestIncomeVsExpenseTrendOrdersOldestFirst(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	userID, categoryID := seedUserAndCategory(t, db)

	svc, err := NewReportService(db)
	require.NoError(t, err)
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Transaction{
		UserID: userID, CategoryID: categoryID,
		Type: models.TransactionTypeIncome, Amount: 100,
		Date: time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC),
	}).Error)
	require.NoError(t, db.Create(&models.Transaction{
		UserID: userID, CategoryID: categoryID,
		Type: models.TransactionTypeExpense, Amount: 30,
		Date: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	}).Error)

	points, err := svc.IncomeVsExpenseTrend(ctx, userID, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	require.Equal(t, "Apr 2025", points[0].Month)
	require.Equal(t, "May 2025", points[1].Month)
	require.Equal(t, 100.0, points[1].Income)
	require.Equal(t, "Jun 2025", points[2].Month)
	require.Equal(t, 30.0, points[2].Expenses)
	require.Equal(t, -30.0, points[2].Net)
}

func TestYearlyReport(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	userID, categoryID := seedUserAndCategory(t, db)

	svc, err := NewReportService(db)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Transaction{
		UserID: userID, CategoryID: categoryID,
		Type: models.TransactionTypeIncome, Amount: 100,
		Date: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
	}).Error)
	require.NoError(t, db.Create(&models.Transaction{
		UserID: userID, CategoryID: categoryID,
		Type: models.TransactionTypeIncome, Amount: 100,
		Date: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
	}).Error)

	report, err := svc.Yearly(ctx, userID, 2025)
	require.NoError(t, err)
	require.Equal(t, "2025", report.Period)
	require.Equal(t, 100.0, report.Income)
}
