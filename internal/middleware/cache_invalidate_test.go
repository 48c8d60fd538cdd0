package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fintrackhq/fintrack/internal/cache"
	"github.com/fintrackhq/fintrack/internal/currency"
	"github.com/fintrackhq/fintrack/internal/models"
	"github.com/fintrackhq/fintrack/internal/services"
)

// cannedAggregator serves fixed values so cache state can be observed
// without a database.
type cannedAggregator struct{}

func (cannedAggregator) Categories(_ context.Context, _ string) ([]models.Category, error) {
	return []models.Category{{Name: "Groceries", Type: models.CategoryTypeExpense}}, nil
}

func (cannedAggregator) ActiveBudgets(_ context.Context, _ string) ([]services.BudgetStatus, error) {
	return nil, nil
}

func (cannedAggregator) ActiveGoals(_ context.Context, _ string) ([]services.GoalStatus, error) {
	return nil, nil
}

func (cannedAggregator) DashboardSnapshot(_ context.Context, _ string) (*services.DashboardSnapshot, error) {
	return &services.DashboardSnapshot{}, nil
}

func (cannedAggregator) MonthlyStats(_ context.Context, _ string) (*services.MonthlyStats, error) {
	return &services.MonthlyStats{}, nil
}

func (cannedAggregator) TransactionSummary(_ context.Context, _ string, _ int, _ time.Month) (*services.MonthlySummary, error) {
	return &services.MonthlySummary{}, nil
}

func (cannedAggregator) MonthlyReport(_ context.Context, _ string, _ int, _ time.Month) (*services.MonthlyReport, error) {
	return &services.MonthlyReport{}, nil
}

func (cannedAggregator) UnreadNotifications(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

func (cannedAggregator) UserProfile(_ context.Context, _ string) (*models.User, error) {
	return &models.User{Name: "Test"}, nil
}

func (cannedAggregator) CurrencyRates(ctx context.Context) (currency.Rates, error) {
	return currency.StaticProvider{}.Rates(ctx)
}

func newInvalidationFixture(t *testing.T) (*gin.Engine, *services.CacheService, cache.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := cache.NewMemoryStore()
	keys := cache.NewKeys(cache.KeysConfig{})
	cacheSvc, err := services.NewCacheService(store, keys, cannedAggregator{})
	require.NoError(t, err)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(CtxUserIDKey, "u1")
		c.Next()
	})
	r.Use(CacheInvalidate(cacheSvc))
	r.GET("/read", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/write", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/reject", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })

	return r, cacheSvc, store
}

func warmCategories(t *testing.T, svc *services.CacheService, store cache.Store, userID string) string {
	t.Helper()
	ctx := context.Background()
	_, err := svc.GetCategories(ctx, userID)
	require.NoError(t, err)
	key := svc.Keys().Categories(userID)
	has, err := store.Has(ctx, key)
	require.NoError(t, err)
	require.True(t, has)
	return key
}

func TestSuccessfulMutationClearsUserCache(t *testing.T) {
	r, svc, store := newInvalidationFixture(t)
	key := warmCategories(t, svc, store, "u1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/write", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	has, err := store.Has(context.Background(), key)
	require.NoError(t, err)
	require.False(t, has)
}

func TestReadRequestLeavesCacheIntact(t *testing.T) {
	r, svc, store := newInvalidationFixture(t)
	key := warmCategories(t, svc, store, "u1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/read", nil))
	require.Equal(t, http.StatusOK, w.Code)

	has, err := store.Has(context.Background(), key)
	require.NoError(t, err)
	require.True(t, has)
}

func TestFailedMutationLeavesCacheIntact(t *testing.T) {
	r, svc, store := newInvalidationFixture(t)
	key := warmCategories(t, svc, store, "u1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reject", nil))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	has, err := store.Has(context.Background(), key)
	require.NoError(t, err)
	require.True(t, has)
}

func TestOtherUsersEntriesSurviveMutation(t *testing.T) {
	r, svc, store := newInvalidationFixture(t)
	warmCategories(t, svc, store, "u1")
	otherKey := warmCategories(t, svc, store, "u2")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/write", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	has, err := store.Has(context.Background(), otherKey)
	require.NoError(t, err)
	require.True(t, has)
}
