package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fintrackhq/fintrack/internal/cache"
	"github.com/fintrackhq/fintrack/internal/currency"
	"github.com/fintrackhq/fintrack/internal/models"
)

// fakeAggregator counts computations and serves mutable canned values so
// tests can observe when the cache recomputes versus serves a hit.
type fakeAggregator struct {
	mu sync.Mutex

	categories  []models.Category
	budgets     []BudgetStatus
	goals       []GoalStatus
	stats       MonthlyStats
	summary     MonthlySummary
	report      MonthlyReport
	unread      int64
	profile     models.User
	rates       currency.Rates
	snapshot    DashboardSnapshot
	computeErr  error
	computes    map[string]int
	summaryByYM map[string]MonthlySummary
}

func newFakeAggregator() *fakeAggregator {
	return &fakeAggregator{
		computes:    map[string]int{},
		rates:       currency.Rates{"USD": 1.0},
		summaryByYM: map[string]MonthlySummary{},
	}
}

func (f *fakeAggregator) bump(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.computes[name]++
	return f.computeErr
}

func (f *fakeAggregator) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.computes[name]
}

func (f *fakeAggregator) Categories(ctx context.Context, userID string) ([]models.Category, error) {
	if err := f.bump("categories"); err != nil {
		return nil, err
	}
	return f.categories, nil
}

func (f *fakeAggregator) ActiveBudgets(ctx context.Context, userID string) ([]BudgetStatus, error) {
	if err := f.bump("budgets"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.budgets, nil
}

func (f *fakeAggregator) ActiveGoals(ctx context.Context, userID string) ([]GoalStatus, error) {
	if err := f.bump("goals"); err != nil {
		return nil, err
	}
	return f.goals, nil
}

func (f *fakeAggregator) DashboardSnapshot(ctx context.Context, userID string) (*DashboardSnapshot, error) {
	if err := f.bump("dashboard"); err != nil {
		return nil, err
	}
	return &f.snapshot, nil
}

func (f *fakeAggregator) MonthlyStats(ctx context.Context, userID string) (*MonthlyStats, error) {
	if err := f.bump("monthly_stats"); err != nil {
		return nil, err
	}
	return &f.stats, nil
}

func (f *fakeAggregator) TransactionSummary(ctx context.Context, userID string, year int, month time.Month) (*MonthlySummary, error) {
	key := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006_01")
	if err := f.bump("summary_" + key); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.summaryByYM[key]; ok {
		return &s, nil
	}
	return &f.summary, nil
}

func (f *fakeAggregator) MonthlyReport(ctx context.Context, userID string, year int, month time.Month) (*MonthlyReport, error) {
	if err := f.bump("report"); err != nil {
		return nil, err
	}
	return &f.report, nil
}

func (f *fakeAggregator) UnreadNotifications(ctx context.Context, userID string) (int64, error) {
	if err := f.bump("unread"); err != nil {
		return 0, err
	}
	return f.unread, nil
}

func (f *fakeAggregator) UserProfile(ctx context.Context, userID string) (*models.User, error) {
	if err := f.bump("profile"); err != nil {
		return nil, err
	}
	return &f.profile, nil
}

func (f *fakeAggregator) CurrencyRates(ctx context.Context) (currency.Rates, error) {
	if err := f.bump("rates"); err != nil {
		return nil, err
	}
	return f.rates, nil
}

// failingReadStore returns an error on every read while writes succeed.
type failingReadStore struct {
	cache.Store
}

func (s failingReadStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}

// failingWriteStore accepts reads but rejects every write.
type failingWriteStore struct {
	cache.Store
}

func (s failingWriteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("store down")
}

func newTestCacheService(t *testing.T, store cache.Store, agg Aggregator, opts ...CacheOption) *CacheService {
	t.Helper()
	svc, err := NewCacheService(store, cache.NewKeys(cache.KeysConfig{}), agg, opts...)
	require.NoError(t, err)
	return svc
}

func TestReadThroughComputesOncePerKey(t *testing.T) {
	agg := newFakeAggregator()
	agg.categories = []models.Category{{Name: "Food", Type: models.CategoryTypeExpense}}
	svc := newTestCacheService(t, cache.NewMemoryStore(), agg)
	ctx := context.Background()

	first, err := svc.GetCategories(ctx, "u1")
	require.NoError(t, err)
	second, err := svc.GetCategories(ctx, "u1")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, agg.count("categories"))

	// A different user misses independently.
	_, err = svc.GetCategories(ctx, "u2")
	require.NoError(t, err)
	require.Equal(t, 2, agg.count("categories"))
}

func TestReadThroughStoreReadErrorIsMiss(t *testing.T) {
	agg := newFakeAggregator()
	agg.unread = 7
	svc := newTestCacheService(t, failingReadStore{cache.NewMemoryStore()}, agg)
	ctx := context.Background()

	count, err := svc.GetUnreadNotifications(ctx, "u1")
	require.NoError(t, err)
	require.EqualValues(t, 7, count)

	// Every read fails, so every call recomputes.
	_, err = svc.GetUnreadNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 2, agg.count("unread"))
}

func TestReadThroughWriteBackErrorIsSwallowed(t *testing.T) {
	agg := newFakeAggregator()
	agg.stats = MonthlyStats{Income: 100, Expenses: 40, NetSavings: 60, SavingsRate: 60}
	svc := newTestCacheService(t, failingWriteStore{cache.NewMemoryStore()}, agg)

	stats, err := svc.GetMonthlyStats(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 60.0, stats.NetSavings)
}

func TestReadThroughComputeErrorPropagates(t *testing.T) {
	agg := newFakeAggregator()
	agg.computeErr = errors.New("db down")
	store := cache.NewMemoryStore()
	svc := newTestCacheService(t, store, agg)
	ctx := context.Background()

	_, err := svc.GetCategories(ctx, "u1")
	require.Error(t, err)

	// Nothing was written back; the next call computes again.
	ok, err := store.Has(ctx, svc.Keys().Categories("u1"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestClearForcesRecompute(t *testing.T) {
	agg := newFakeAggregator()
	svc := newTestCacheService(t, cache.NewMemoryStore(), agg)
	ctx := context.Background()

	_, err := svc.GetCategories(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.GetCategories(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, agg.count("categories"))

	svc.ClearCategoriesCache(ctx, "u1")

	_, err = svc.GetCategories(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 2, agg.count("categories"))
}

func TestBudgetUtilizationFreshAfterClear(t *testing.T) {
	agg := newFakeAggregator()
	agg.budgets = []BudgetStatus{{Spent: 0, Utilization: 0}}
	svc := newTestCacheService(t, cache.NewMemoryStore(), agg)
	ctx := context.Background()

	before, err := svc.GetActiveBudgets(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 0.0, before[0].Utilization)

	// An expense lands: the canonical value moves and the write path clears.
	agg.mu.Lock()
	agg.budgets = []BudgetStatus{{Spent: 85, Utilization: 85}}
	agg.mu.Unlock()
	svc.ClearBudgetsCache(ctx, "u1")

	after, err := svc.GetActiveBudgets(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 85.0, after[0].Utilization)
}

func TestTransactionCacheCrossMonthIsolation(t *testing.T) {
	agg := newFakeAggregator()
	agg.summaryByYM["2025_03"] = MonthlySummary{Year: 2025, Month: time.March, TotalIncome: 100}
	agg.summaryByYM["2025_04"] = MonthlySummary{Year: 2025, Month: time.April, TotalIncome: 200}

	store := cache.NewMemoryStore()
	svc := newTestCacheService(t, store, agg)
	ctx := context.Background()

	_, err := svc.GetTransactionSummary(ctx, "u1", 2025, time.March)
	require.NoError(t, err)
	_, err = svc.GetTransactionSummary(ctx, "u1", 2025, time.April)
	require.NoError(t, err)

	// A March mutation leaves April's entry untouched.
	svc.ClearTransactionCacheAt(ctx, "u1", time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC))

	ok, err := store.Has(ctx, svc.Keys().TransactionSummary("u1", 2025, time.March))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = store.Has(ctx, svc.Keys().TransactionSummary("u1", 2025, time.April))
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.GetTransactionSummary(ctx, "u1", 2025, time.April)
	require.NoError(t, err)
	require.Equal(t, 1, agg.count("summary_2025_04"))
	require.Equal(t, 1, agg.count("summary_2025_03"))
}

func TestClearTransactionCacheDropsDerivedEntries(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	agg := newFakeAggregator()
	store := cache.NewMemoryStore()
	svc := newTestCacheService(t, store, agg, WithCacheClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := svc.GetTransactionSummary(ctx, "u1", 2025, time.June)
	require.NoError(t, err)
	_, err = svc.GetMonthlyStats(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.GetMonthlyReport(ctx, "u1", 2025, time.June)
	require.NoError(t, err)
	_, err = svc.GetDashboard(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.GetCategories(ctx, "u1")
	require.NoError(t, err)

	svc.ClearTransactionCache(ctx, "u1")

	keys := svc.Keys()
	for _, key := range []string{
		keys.TransactionSummary("u1", 2025, time.June),
		keys.MonthlyStats("u1", 2025, time.June),
		keys.MonthlyReport("u1", 2025, time.June),
		keys.Dashboard("u1"),
	} {
		ok, err := store.Has(ctx, key)
		require.NoError(t, err)
		require.False(t, ok, "expected %s to be cleared", key)
	}

	// Categories are not derived from transactions and stay cached.
	ok, err := store.Has(ctx, keys.Categories("u1"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestConcurrentMissesAllSucceed(t *testing.T) {
	agg := newFakeAggregator()
	agg.unread = 3
	svc := newTestCacheService(t, cache.NewMemoryStore(), agg)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	var failures atomic.Int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := svc.GetUnreadNotifications(ctx, "u1")
			if err != nil || count != 3 {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Zero(t, failures.Load())
	// Racing misses may each compute; what matters is at least one did and
	// every caller observed the same canonical value.
	require.GreaterOrEqual(t, agg.count("unread"), 1)
	require.LessOrEqual(t, agg.count("unread"), workers)
}

func TestClearAllUserCacheIsExhaustive(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	agg := newFakeAggregator()
	store := cache.NewMemoryStore()
	svc := newTestCacheService(t, store, agg, WithCacheClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := svc.GetDashboard(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.GetCategories(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.GetActiveBudgets(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.GetActiveGoals(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.GetMonthlyStats(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.GetTransactionSummary(ctx, "u1", 2025, time.June)
	require.NoError(t, err)
	_, err = svc.GetMonthlyReport(ctx, "u1", 2025, time.June)
	require.NoError(t, err)
	_, err = svc.GetUnreadNotifications(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.GetCurrencyRates(ctx)
	require.NoError(t, err)

	svc.ClearAllUserCache(ctx, "u1")

	for _, key := range svc.Keys().UserKeys("u1", 2025, time.June) {
		ok, err := store.Has(ctx, key)
		require.NoError(t, err)
		require.False(t, ok, "expected %s to be cleared", key)
	}

	// The shared currency table survives per-user clears.
	ok, err := store.Has(ctx, svc.Keys().CurrencyRates())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCachedEntryExpiresByTTL(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	agg := newFakeAggregator()
	store := cache.NewMemoryStore(cache.WithClock(clock))
	svc := newTestCacheService(t, store, agg, WithCacheClock(clock))
	ctx := context.Background()

	_, err := svc.GetUnreadNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, agg.count("unread"))

	// Within the notifications TTL the entry is served from cache.
	now = now.Add(time.Minute)
	_, err = svc.GetUnreadNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, agg.count("unread"))

	// Past the 2 minute TTL the entry is gone and gets recomputed.
	now = now.Add(2 * time.Minute)
	_, err = svc.GetUnreadNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 2, agg.count("unread"))
}

func TestWarmUserCachePrecomputesHotRegions(t *testing.T) {
	agg := newFakeAggregator()
	store := cache.NewMemoryStore()
	svc := newTestCacheService(t, store, agg)
	ctx := context.Background()

	require.NoError(t, svc.WarmUserCache(ctx, "u1"))

	keys := svc.Keys()
	for _, key := range []string{
		keys.Categories("u1"),
		keys.ActiveBudgets("u1"),
		keys.ActiveGoals("u1"),
		keys.UnreadNotifications("u1"),
	} {
		ok, err := store.Has(ctx, key)
		require.NoError(t, err)
		require.True(t, ok, "expected %s to be warmed", key)
	}

	// Warmed entries serve subsequent reads without recomputing.
	_, err := svc.GetCategories(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, agg.count("categories"))
}

func TestWarmUserCacheAggregatesFailures(t *testing.T) {
	agg := newFakeAggregator()
	agg.computeErr = errors.New("db down")
	svc := newTestCacheService(t, cache.NewMemoryStore(), agg)

	err := svc.WarmUserCache(context.Background(), "u1")
	require.Error(t, err)
}

func TestUndecodablePayloadIsRecomputed(t *testing.T) {
	agg := newFakeAggregator()
	agg.unread = 9
	store := cache.NewMemoryStore()
	svc := newTestCacheService(t, store, agg)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, svc.Keys().UnreadNotifications("u1"), []byte("{not json"), time.Minute))

	count, err := svc.GetUnreadNotifications(ctx, "u1")
	require.NoError(t, err)
	require.EqualValues(t, 9, count)
	require.Equal(t, 1, agg.count("unread"))
}

func TestFlushAllEmptiesStore(t *testing.T) {
	agg := newFakeAggregator()
	store := cache.NewMemoryStore()
	svc := newTestCacheService(t, store, agg)
	ctx := context.Background()

	_, err := svc.GetCurrencyRates(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.FlushAll(ctx))

	ok, err := store.Has(ctx, svc.Keys().CurrencyRates())
	require.NoError(t, err)
	require.False(t, ok)
}
