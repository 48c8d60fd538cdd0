package services

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fintrackhq/fintrack/internal/cache"
	"github.com/fintrackhq/fintrack/pkg/metrics"
)

// Invalidation coordinator. Every Clear* method deletes cached entries so the
// next read recomputes from the database; entries are never updated in place.
// Clears are fire-and-forget: store failures are logged and swallowed, since
// a stale entry ages out by TTL anyway.

// ClearDashboardCache drops the user's dashboard snapshot.
func (s *CacheService) ClearDashboardCache(ctx context.Context, userID string) {
	s.clear(ctx, cache.RegionDashboard, s.keys.Dashboard(userID))
}

// ClearCategoriesCache drops the user's category list.
func (s *CacheService) ClearCategoriesCache(ctx context.Context, userID string) {
	s.clear(ctx, cache.RegionCategories, s.keys.Categories(userID))
}

// ClearBudgetsCache drops the user's active budget list.
func (s *CacheService) ClearBudgetsCache(ctx context.Context, userID string) {
	s.clear(ctx, cache.RegionBudgets, s.keys.ActiveBudgets(userID))
}

// ClearGoalsCache drops the user's active goal list.
func (s *CacheService) ClearGoalsCache(ctx context.Context, userID string) {
	s.clear(ctx, cache.RegionGoals, s.keys.ActiveGoals(userID))
}

// ClearMonthlyStatsCache drops the user's stats for the current month.
func (s *CacheService) ClearMonthlyStatsCache(ctx context.Context, userID string) {
	now := s.now().UTC()
	s.clear(ctx, cache.RegionMonthlyStats, s.keys.MonthlyStats(userID, now.Year(), now.Month()))
}

// ClearTransactionCache drops the caches derived from the user's transactions
// for the current month: the transaction summary, the dashboard snapshot, and
// the monthly stats. Months other than the current one are left to expire by
// TTL; use ClearTransactionCacheAt when the mutated transaction carries a
// different date.
func (s *CacheService) ClearTransactionCache(ctx context.Context, userID string) {
	s.ClearTransactionCacheAt(ctx, userID, s.now().UTC())
}

// ClearTransactionCacheAt drops transaction-derived caches for the month
// containing date, plus the dashboard snapshot, which aggregates across months.
func (s *CacheService) ClearTransactionCacheAt(ctx context.Context, userID string, date time.Time) {
	date = date.UTC()
	s.clear(ctx, cache.RegionTransactionSummary, s.keys.TransactionSummary(userID, date.Year(), date.Month()))
	s.clear(ctx, cache.RegionMonthlyStats, s.keys.MonthlyStats(userID, date.Year(), date.Month()))
	s.clear(ctx, cache.RegionReports, s.keys.MonthlyReport(userID, date.Year(), date.Month()))
	s.clear(ctx, cache.RegionDashboard, s.keys.Dashboard(userID))
}

// ClearReportsCache drops the user's generated report for one month.
func (s *CacheService) ClearReportsCache(ctx context.Context, userID string, year int, month time.Month) {
	s.clear(ctx, cache.RegionReports, s.keys.MonthlyReport(userID, year, month))
}

// ClearNotificationsCache drops the user's unread notification count.
func (s *CacheService) ClearNotificationsCache(ctx context.Context, userID string) {
	s.clear(ctx, cache.RegionNotifications, s.keys.UnreadNotifications(userID))
}

// ClearUserProfileCache drops the user's profile record.
func (s *CacheService) ClearUserProfileCache(ctx context.Context, userID string) {
	s.clear(ctx, cache.RegionUserProfile, s.keys.UserProfile(userID))
}

// ClearCurrencyCache drops the global currency rate table.
func (s *CacheService) ClearCurrencyCache(ctx context.Context) {
	s.clear(ctx, cache.RegionCurrency, s.keys.CurrencyRates())
}

// ClearAllUserCache drops every per-user entry for the current month in one
// store round trip. The global currency table is shared and left alone.
func (s *CacheService) ClearAllUserCache(ctx context.Context, userID string) {
	now := s.now().UTC()
	keys := s.keys.UserKeys(userID, now.Year(), now.Month())

	if err := s.store.Delete(ensureContext(ctx), keys...); err != nil {
		s.log.Warn("bulk cache clear failed",
			zap.String("user_id", userID), zap.Error(err))
		return
	}
	metrics.CacheInvalidations.WithLabelValues("all").Add(float64(len(keys)))
}

// FlushAll empties the entire store. Admin-only.
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.store.FlushAll(ensureContext(ctx))
}

// WarmUserCache precomputes the hot per-user regions through the normal
// read-through path so the next dashboard load is served from cache.
func (s *CacheService) WarmUserCache(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)

	var errs error
	if _, err := s.GetCategories(ctx, userID); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := s.GetActiveBudgets(ctx, userID); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := s.GetActiveGoals(ctx, userID); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := s.GetUnreadNotifications(ctx, userID); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := s.GetMonthlyStats(ctx, userID); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

func (s *CacheService) clear(ctx context.Context, region cache.Region, key string) {
	if err := s.store.Delete(ensureContext(ctx), key); err != nil {
		s.log.Warn("cache clear failed",
			zap.String("key", key), zap.Error(err))
		return
	}
	metrics.CacheInvalidations.WithLabelValues(string(region)).Inc()
}
