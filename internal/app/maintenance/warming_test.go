package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fintrackhq/fintrack/internal/cache"
	"github.com/fintrackhq/fintrack/internal/currency"
	"github.com/fintrackhq/fintrack/internal/database/testutil"
	"github.com/fintrackhq/fintrack/internal/models"
	"github.com/fintrackhq/fintrack/internal/services"
)

func newWarmingFixture(t *testing.T) (*gorm.DB, *services.CacheService, *services.UserService, cache.Store) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	users, err := services.NewUserService(db)
	require.NoError(t, err)
	categories, err := services.NewCategoryService(db)
	require.NoError(t, err)
	budgets, err := services.NewBudgetService(db)
	require.NoError(t, err)
	notifications, err := services.NewNotificationService(db)
	require.NoError(t, err)
	goals, err := services.NewGoalService(db, notifications)
	require.NoError(t, err)
	transactions, err := services.NewTransactionService(db, budgets, notifications)
	require.NoError(t, err)
	dashboard, err := services.NewDashboardService(db, budgets, goals)
	require.NoError(t, err)
	reports, err := services.NewReportService(db)
	require.NoError(t, err)

	aggregator := services.NewServiceAggregator(
		categories, budgets, goals, transactions, notifications,
		dashboard, reports, users, currency.StaticProvider{},
	)

	store := cache.NewMemoryStore()
	keys := cache.NewKeys(cache.KeysConfig{})
	cacheSvc, err := services.NewCacheService(store, keys, aggregator)
	require.NoError(t, err)

	return db, cacheSvc, users, store
}

func seedActiveUser(t *testing.T, db *gorm.DB, users *services.UserService) string {
	t.Helper()
	ctx := context.Background()

	user, err := users.Create(ctx, services.CreateUserInput{
		Name: "Warm User", Email: "warm@example.com", Password: "warmingtest",
	})
	require.NoError(t, err)

	var category models.Category
	require.NoError(t, db.First(&category, "user_id = ?", user.ID).Error)

	require.NoError(t, db.Create(&models.Transaction{
		UserID: user.ID, CategoryID: category.ID,
		Type: models.TransactionTypeExpense, Amount: 20,
		Date: time.Now().UTC(),
	}).Error)

	return user.ID
}

func TestRunOnceWarmsRecentlyActiveUsers(t *testing.T) {
	db, cacheSvc, users, store := newWarmingFixture(t)
	userID := seedActiveUser(t, db, users)

	warmer := NewWarmer(cacheSvc, users, nil)
	require.NoError(t, warmer.RunOnce(context.Background()))

	ctx := context.Background()
	keys := cacheSvc.Keys()
	for _, key := range []string{
		keys.Categories(userID),
		keys.ActiveBudgets(userID),
		keys.ActiveGoals(userID),
		keys.UnreadNotifications(userID),
	} {
		has, err := store.Has(ctx, key)
		require.NoError(t, err)
		require.True(t, has, "expected warmed key %s", key)
	}
}

func TestRunOnceSkipsUsersWithoutTransactions(t *testing.T) {
	_, cacheSvc, users, store := newWarmingFixture(t)

	user, err := users.Create(context.Background(), services.CreateUserInput{
		Name: "Idle User", Email: "idle@example.com", Password: "warmingtest",
	})
	require.NoError(t, err)

	warmer := NewWarmer(cacheSvc, users, nil)
	require.NoError(t, warmer.RunOnce(context.Background()))

	has, err := store.Has(context.Background(), cacheSvc.Keys().Categories(user.ID))
	require.NoError(t, err)
	require.False(t, has)
}

func TestRunOncePrunesExpiredDatabaseEntries(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	dbStore := cache.NewDatabaseStore(db)
	ctx := context.Background()

	require.NoError(t, dbStore.Set(ctx, "stale", []byte(`1`), time.Minute))
	require.NoError(t, dbStore.Set(ctx, "eternal", []byte(`2`), 0))

	warmer := NewWarmer(nil, nil, dbStore, WithNow(func() time.Time {
		return time.Now().UTC().Add(2 * time.Minute)
	}))
	require.NoError(t, warmer.RunOnce(ctx))

	var rows []models.CacheEntry
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, "eternal", rows[0].Key)
}

func TestStartRegistersJobsAndStops(t *testing.T) {
	db, cacheSvc, users, _ := newWarmingFixture(t)
	dbStore := cache.NewDatabaseStore(db)

	warmer := NewWarmer(cacheSvc, users, dbStore, WithWarmingSchedule("@every 1h"))
	require.NoError(t, warmer.Start())

	done := warmer.Stop()
	select {
	case <-done.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}
