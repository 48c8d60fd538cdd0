package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fintrackhq/fintrack/internal/cache"
	"github.com/fintrackhq/fintrack/internal/currency"
	"github.com/fintrackhq/fintrack/internal/models"
	"github.com/fintrackhq/fintrack/pkg/logger"
	"github.com/fintrackhq/fintrack/pkg/metrics"
)

// Aggregator computes the canonical value for each cached region. The
// concrete implementation delegates to the domain services; tests substitute
// counting fakes.
type Aggregator interface {
	Categories(ctx context.Context, userID string) ([]models.Category, error)
	ActiveBudgets(ctx context.Context, userID string) ([]BudgetStatus, error)
	ActiveGoals(ctx context.Context, userID string) ([]GoalStatus, error)
	DashboardSnapshot(ctx context.Context, userID string) (*DashboardSnapshot, error)
	MonthlyStats(ctx context.Context, userID string) (*MonthlyStats, error)
	TransactionSummary(ctx context.Context, userID string, year int, month time.Month) (*MonthlySummary, error)
	MonthlyReport(ctx context.Context, userID string, year int, month time.Month) (*MonthlyReport, error)
	UnreadNotifications(ctx context.Context, userID string) (int64, error)
	UserProfile(ctx context.Context, userID string) (*models.User, error)
	CurrencyRates(ctx context.Context) (currency.Rates, error)
}

// CacheService is the read-through layer in front of the aggregate queries.
// Store failures on read count as a miss; store failures on write-back are
// logged and swallowed. Computation failures always propagate.
type CacheService struct {
	store      cache.Store
	keys       *cache.Keys
	aggregator Aggregator
	log        *zap.Logger
	now        func() time.Time
}

// CacheOption customizes CacheService construction.
type CacheOption func(*CacheService)

// WithCacheClock overrides the time source. Tests use this to pin the
// current month.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(s *CacheService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewCacheService constructs the read-through cache layer.
func NewCacheService(store cache.Store, keys *cache.Keys, aggregator Aggregator, opts ...CacheOption) (*CacheService, error) {
	if store == nil {
		return nil, errors.New("cache service: store is required")
	}
	if keys == nil {
		return nil, errors.New("cache service: key registry is required")
	}
	if aggregator == nil {
		return nil, errors.New("cache service: aggregator is required")
	}

	s := &CacheService{
		store:      store,
		keys:       keys,
		aggregator: aggregator,
		log:        logger.WithModule("cache"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Keys exposes the key registry for callers that need raw key access.
func (s *CacheService) Keys() *cache.Keys {
	return s.keys
}

// GetDashboard returns the cached dashboard snapshot, computing it on a miss.
func (s *CacheService) GetDashboard(ctx context.Context, userID string) (*DashboardSnapshot, error) {
	return getOrCompute(ctx, s, cache.RegionDashboard, s.keys.Dashboard(userID),
		func(ctx context.Context) (*DashboardSnapshot, error) {
			return s.aggregator.DashboardSnapshot(ctx, userID)
		})
}

// GetCategories returns the cached category list for a user.
func (s *CacheService) GetCategories(ctx context.Context, userID string) ([]models.Category, error) {
	return getOrCompute(ctx, s, cache.RegionCategories, s.keys.Categories(userID),
		func(ctx context.Context) ([]models.Category, error) {
			return s.aggregator.Categories(ctx, userID)
		})
}

// GetActiveBudgets returns the cached active budget list for a user.
func (s *CacheService) GetActiveBudgets(ctx context.Context, userID string) ([]BudgetStatus, error) {
	return getOrCompute(ctx, s, cache.RegionBudgets, s.keys.ActiveBudgets(userID),
		func(ctx context.Context) ([]BudgetStatus, error) {
			return s.aggregator.ActiveBudgets(ctx, userID)
		})
}

// GetActiveGoals returns the cached active goal list for a user.
func (s *CacheService) GetActiveGoals(ctx context.Context, userID string) ([]GoalStatus, error) {
	return getOrCompute(ctx, s, cache.RegionGoals, s.keys.ActiveGoals(userID),
		func(ctx context.Context) ([]GoalStatus, error) {
			return s.aggregator.ActiveGoals(ctx, userID)
		})
}

// GetMonthlyStats returns the cached dashboard statistics for the current month.
func (s *CacheService) GetMonthlyStats(ctx context.Context, userID string) (*MonthlyStats, error) {
	now := s.now().UTC()
	return getOrCompute(ctx, s, cache.RegionMonthlyStats, s.keys.MonthlyStats(userID, now.Year(), now.Month()),
		func(ctx context.Context) (*MonthlyStats, error) {
			return s.aggregator.MonthlyStats(ctx, userID)
		})
}

// GetTransactionSummary returns the cached transaction summary for one month.
func (s *CacheService) GetTransactionSummary(ctx context.Context, userID string, year int, month time.Month) (*MonthlySummary, error) {
	return getOrCompute(ctx, s, cache.RegionTransactionSummary, s.keys.TransactionSummary(userID, year, month),
		func(ctx context.Context) (*MonthlySummary, error) {
			return s.aggregator.TransactionSummary(ctx, userID, year, month)
		})
}

// GetMonthlyReport returns the cached generated report for one month.
func (s *CacheService) GetMonthlyReport(ctx context.Context, userID string, year int, month time.Month) (*MonthlyReport, error) {
	return getOrCompute(ctx, s, cache.RegionReports, s.keys.MonthlyReport(userID, year, month),
		func(ctx context.Context) (*MonthlyReport, error) {
			return s.aggregator.MonthlyReport(ctx, userID, year, month)
		})
}

// GetUnreadNotifications returns the cached unread notification count.
func (s *CacheService) GetUnreadNotifications(ctx context.Context, userID string) (int64, error) {
	return getOrCompute(ctx, s, cache.RegionNotifications, s.keys.UnreadNotifications(userID),
		func(ctx context.Context) (int64, error) {
			return s.aggregator.UnreadNotifications(ctx, userID)
		})
}

// GetUserProfile returns the cached profile record for a user.
func (s *CacheService) GetUserProfile(ctx context.Context, userID string) (*models.User, error) {
	return getOrCompute(ctx, s, cache.RegionUserProfile, s.keys.UserProfile(userID),
		func(ctx context.Context) (*models.User, error) {
			return s.aggregator.UserProfile(ctx, userID)
		})
}

// GetCurrencyRates returns the cached global currency rate table.
func (s *CacheService) GetCurrencyRates(ctx context.Context) (currency.Rates, error) {
	return getOrCompute(ctx, s, cache.RegionCurrency, s.keys.CurrencyRates(),
		func(ctx context.Context) (currency.Rates, error) {
			return s.aggregator.CurrencyRates(ctx)
		})
}

// getOrCompute is the single read-through path. Cached values are JSON blobs;
// a payload that fails to decode counts as a miss and is recomputed.
func getOrCompute[T any](ctx context.Context, s *CacheService, region cache.Region, key string, compute func(context.Context) (T, error)) (T, error) {
	ctx = ensureContext(ctx)
	var zero T

	payload, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache read failed, treating as miss",
			zap.String("key", key), zap.Error(err))
	} else if found {
		var value T
		if err := json.Unmarshal(payload, &value); err == nil {
			metrics.CacheHits.WithLabelValues(string(region)).Inc()
			return value, nil
		}
		s.log.Warn("cache payload undecodable, recomputing", zap.String("key", key))
	}

	metrics.CacheMisses.WithLabelValues(string(region)).Inc()

	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return zero, fmt.Errorf("cache service: encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, encoded, s.keys.TTL(region)); err != nil {
		s.log.Warn("cache write-back failed",
			zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

// serviceAggregator is the production Aggregator backed by the domain services.
type serviceAggregator struct {
	categories    *CategoryService
	budgets       *BudgetService
	goals         *GoalService
	transactions  *TransactionService
	notifications *NotificationService
	dashboard     *DashboardService
	reports       *ReportService
	users         *UserService
	rates         currency.RateProvider
}

// NewServiceAggregator wires the domain services into an Aggregator.
func NewServiceAggregator(
	categories *CategoryService,
	budgets *BudgetService,
	goals *GoalService,
	transactions *TransactionService,
	notifications *NotificationService,
	dashboard *DashboardService,
	reports *ReportService,
	users *UserService,
	rates currency.RateProvider,
) Aggregator {
	return &serviceAggregator{
		categories:    categories,
		budgets:       budgets,
		goals:         goals,
		transactions:  transactions,
		notifications: notifications,
		dashboard:     dashboard,
		reports:       reports,
		users:         users,
		rates:         rates,
	}
}

func (a *serviceAggregator) Categories(ctx context.Context, userID string) ([]models.Category, error) {
	return a.categories.ListForUser(ctx, userID)
}

func (a *serviceAggregator) ActiveBudgets(ctx context.Context, userID string) ([]BudgetStatus, error) {
	return a.budgets.ActiveForUser(ctx, userID)
}

func (a *serviceAggregator) ActiveGoals(ctx context.Context, userID string) ([]GoalStatus, error) {
	return a.goals.ActiveForUser(ctx, userID)
}

func (a *serviceAggregator) DashboardSnapshot(ctx context.Context, userID string) (*DashboardSnapshot, error) {
	return a.dashboard.Snapshot(ctx, userID)
}

func (a *serviceAggregator) MonthlyStats(ctx context.Context, userID string) (*MonthlyStats, error) {
	return a.dashboard.MonthlyStats(ctx, userID)
}

func (a *serviceAggregator) TransactionSummary(ctx context.Context, userID string, year int, month time.Month) (*MonthlySummary, error) {
	return a.transactions.MonthlySummary(ctx, userID, year, month)
}

func (a *serviceAggregator) MonthlyReport(ctx context.Context, userID string, year int, month time.Month) (*MonthlyReport, error) {
	return a.reports.Monthly(ctx, userID, year, month)
}

func (a *serviceAggregator) UnreadNotifications(ctx context.Context, userID string) (int64, error) {
	return a.notifications.UnreadCount(ctx, userID)
}

func (a *serviceAggregator) UserProfile(ctx context.Context, userID string) (*models.User, error) {
	return a.users.Get(ctx, userID)
}

func (a *serviceAggregator) CurrencyRates(ctx context.Context) (currency.Rates, error) {
	return a.rates.Rates(ctx)
}
