package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fintrackhq/fintrack/internal/cache"
	"github.com/fintrackhq/fintrack/internal/services"
	"github.com/fintrackhq/fintrack/pkg/logger"
)

const (
	defaultWarmingSpec = "*/30 * * * *"
	defaultPruneSpec   = "@hourly"
	defaultMaxUsers    = 50
)

// Warmer coordinates the background cache jobs: prefetching the hot per-user
// regions on a schedule and pruning expired rows from the database store.
type Warmer struct {
	cacheSvc *services.CacheService
	users    *services.UserService
	dbStore  *cache.DatabaseStore
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	maxUsers int

	warmingSchedule string
	pruneSchedule   string
}

// Option customises the Warmer.
type Option func(*Warmer)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(w *Warmer) {
		if c != nil {
			w.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(w *Warmer) {
		if now != nil {
			w.now = now
		}
	}
}

// WithWarmingSchedule overrides the cron specification for cache warming.
func WithWarmingSchedule(spec string) Option {
	return func(w *Warmer) {
		if spec != "" {
			w.warmingSchedule = spec
		}
	}
}

// WithMaxUsers bounds how many users are warmed per run.
func WithMaxUsers(n int) Option {
	return func(w *Warmer) {
		if n > 0 {
			w.maxUsers = n
		}
	}
}

// NewWarmer constructs a Warmer with sensible defaults. A nil database store
// skips the pruning job; warming requires both the cache and user services.
func NewWarmer(cacheSvc *services.CacheService, users *services.UserService, dbStore *cache.DatabaseStore, opts ...Option) *Warmer {
	w := &Warmer{
		cacheSvc:        cacheSvc,
		users:           users,
		dbStore:         dbStore,
		now:             time.Now,
		maxUsers:        defaultMaxUsers,
		warmingSchedule: defaultWarmingSpec,
		pruneSchedule:   defaultPruneSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.cron == nil {
		w.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return w
}

// Start registers the jobs with the cron scheduler and launches it.
func (w *Warmer) Start() error {
	if w.cacheSvc != nil && w.users != nil {
		if _, err := w.cron.AddFunc(w.warmingSchedule, func() {
			if err := w.warm(context.Background()); err != nil {
				w.log.Warn("cache warming failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if w.dbStore != nil {
		if _, err := w.cron.AddFunc(w.pruneSchedule, func() {
			ctx := context.Background()
			if _, err := w.dbStore.PruneExpired(ctx, w.now()); err != nil {
				w.log.Warn("cache prune failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	w.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (w *Warmer) Stop() context.Context {
	if w.cron == nil {
		return context.Background()
	}
	return w.cron.Stop()
}

// RunOnce executes every configured job sequentially. Primarily used in tests
// and during graceful shutdown.
func (w *Warmer) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if w.cacheSvc != nil && w.users != nil {
		if err := w.warm(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if w.dbStore != nil {
		if _, err := w.dbStore.PruneExpired(ctx, w.now()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// warm prefetches the hot regions for recently active users. Per-user
// failures are aggregated so one user cannot starve the rest.
func (w *Warmer) warm(ctx context.Context) error {
	ids, err := w.users.RecentlyActive(ctx, w.maxUsers)
	if err != nil {
		return err
	}

	var errs error
	for _, id := range ids {
		if err := w.cacheSvc.WarmUserCache(ctx, id); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	w.log.Debug("cache warming complete", zap.Int("users", len(ids)))
	return errs
}
