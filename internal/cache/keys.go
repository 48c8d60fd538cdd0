package cache

import (
	"fmt"
	"time"
)

// Region names a category of cached data with its own TTL and key scope.
type Region string

// Cached regions.
const (
	RegionDashboard          Region = "dashboard"
	RegionCategories         Region = "categories"
	RegionBudgets            Region = "budgets"
	RegionGoals              Region = "goals"
	RegionMonthlyStats       Region = "monthly_stats"
	RegionTransactionSummary Region = "transaction_summary"
	RegionReports            Region = "reports"
	RegionNotifications      Region = "notifications"
	RegionCurrency           Region = "currency"
	RegionUserProfile        Region = "user_profile"
)

// Regions lists every cached region.
func Regions() []Region {
	return []Region{
		RegionDashboard,
		RegionCategories,
		RegionBudgets,
		RegionGoals,
		RegionMonthlyStats,
		RegionTransactionSummary,
		RegionReports,
		RegionNotifications,
		RegionCurrency,
		RegionUserProfile,
	}
}

// DefaultPrefix namespaces every cache key produced by this application.
const DefaultPrefix = "fintrack_"

// Default per-region TTLs, overridable through configuration.
var defaultTTLs = map[Region]time.Duration{
	RegionDashboard:          5 * time.Minute,
	RegionCategories:         time.Hour,
	RegionBudgets:            5 * time.Minute,
	RegionGoals:              5 * time.Minute,
	RegionMonthlyStats:       10 * time.Minute,
	RegionTransactionSummary: 5 * time.Minute,
	RegionReports:            15 * time.Minute,
	RegionNotifications:      2 * time.Minute,
	RegionCurrency:           24 * time.Hour,
	RegionUserProfile:        30 * time.Minute,
}

// Keys builds deterministic cache keys and resolves per-region TTLs.
// Key construction is pure: identical inputs always yield identical keys, and
// distinct (region, user, scope) tuples never collide because every region
// uses a distinct literal segment and scope parameters are delimiter-joined
// in a fixed order.
type Keys struct {
	prefix string
	ttls   map[Region]time.Duration
}

// KeysConfig carries configuration overrides for the key registry.
type KeysConfig struct {
	Prefix string
	TTLs   map[Region]time.Duration
}

// NewKeys constructs a key registry with configured TTL overrides.
func NewKeys(cfg KeysConfig) *Keys {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	ttls := make(map[Region]time.Duration, len(defaultTTLs))
	for region, ttl := range defaultTTLs {
		ttls[region] = ttl
	}
	for region, ttl := range cfg.TTLs {
		if ttl > 0 {
			ttls[region] = ttl
		}
	}

	return &Keys{prefix: prefix, ttls: ttls}
}

// TTL returns the configured time-to-live for a region, with a hardcoded fallback.
func (k *Keys) TTL(region Region) time.Duration {
	if ttl, ok := k.ttls[region]; ok {
		return ttl
	}
	return 5 * time.Minute
}

// Dashboard keys the per-user dashboard snapshot.
func (k *Keys) Dashboard(userID string) string {
	return fmt.Sprintf("%sdashboard_data_user_%s", k.prefix, userID)
}

// Categories keys the per-user category list.
func (k *Keys) Categories(userID string) string {
	return fmt.Sprintf("%suser_categories_%s", k.prefix, userID)
}

// ActiveBudgets keys the per-user active budget list.
func (k *Keys) ActiveBudgets(userID string) string {
	return fmt.Sprintf("%suser_active_budgets_%s", k.prefix, userID)
}

// ActiveGoals keys the per-user active goal list.
func (k *Keys) ActiveGoals(userID string) string {
	return fmt.Sprintf("%suser_active_goals_%s", k.prefix, userID)
}

// MonthlyStats keys the per-user dashboard statistics for one calendar month.
func (k *Keys) MonthlyStats(userID string, year int, month time.Month) string {
	return fmt.Sprintf("%suser_monthly_stats_%s_%04d_%02d", k.prefix, userID, year, int(month))
}

// TransactionSummary keys the per-user transaction summary for one calendar month.
func (k *Keys) TransactionSummary(userID string, year int, month time.Month) string {
	return fmt.Sprintf("%suser_transaction_summary_%s_%04d_%02d", k.prefix, userID, year, int(month))
}

// MonthlyReport keys the per-user generated report for one calendar month.
func (k *Keys) MonthlyReport(userID string, year int, month time.Month) string {
	return fmt.Sprintf("%smonthly_report_%s_%04d_%02d", k.prefix, userID, year, int(month))
}

// UnreadNotifications keys the per-user unread notification count.
func (k *Keys) UnreadNotifications(userID string) string {
	return fmt.Sprintf("%sunread_notifications_%s", k.prefix, userID)
}

// CurrencyRates keys the global currency rate table.
func (k *Keys) CurrencyRates() string {
	return k.prefix + "currency_rates"
}

// UserProfile keys the per-user profile record.
func (k *Keys) UserProfile(userID string) string {
	return fmt.Sprintf("%suser_profile_%s", k.prefix, userID)
}

// UserKeys returns every key that may hold data for the given user in the
// given month. Used by the bulk clear path.
func (k *Keys) UserKeys(userID string, year int, month time.Month) []string {
	return []string{
		k.Dashboard(userID),
		k.Categories(userID),
		k.ActiveBudgets(userID),
		k.ActiveGoals(userID),
		k.MonthlyStats(userID, year, month),
		k.TransactionSummary(userID, year, month),
		k.MonthlyReport(userID, year, month),
		k.UnreadNotifications(userID),
		k.UserProfile(userID),
	}
}
