package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fintrackhq/fintrack/internal/api"
	"github.com/fintrackhq/fintrack/internal/app"
	"github.com/fintrackhq/fintrack/internal/app/maintenance"
	iauth "github.com/fintrackhq/fintrack/internal/auth"
	"github.com/fintrackhq/fintrack/internal/cache"
	"github.com/fintrackhq/fintrack/internal/currency"
	"github.com/fintrackhq/fintrack/internal/database"
	"github.com/fintrackhq/fintrack/internal/services"
	"github.com/fintrackhq/fintrack/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fintrack-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		return errors.New("auth.jwt.secret must be configured")
	}

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	dbStore := cache.NewDatabaseStore(db)

	var store cache.Store
	if cfg.Cache.Redis.Enabled {
		client, redisErr := cache.NewRedisClient(cfg.Cache.RedisClientConfig())
		if redisErr != nil {
			log.Warn("redis unavailable; falling back to database-backed cache", zap.Error(redisErr))
		} else {
			store = client
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}
	if store == nil {
		store = dbStore
	}
	defer func() {
		if rc, ok := store.(*cache.RedisClient); ok && rc != nil {
			_ = rc.Close()
		}
	}()

	jwtService, err := iauth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.TTL)
	if err != nil {
		return fmt.Errorf("initialise jwt service: %w", err)
	}

	svcs, cacheSvc, err := buildServices(db, store, cfg)
	if err != nil {
		return err
	}

	warmer := buildWarmer(cfg, cacheSvc, svcs.Users, dbStore)
	if err := warmer.Start(); err != nil {
		return fmt.Errorf("start maintenance jobs: %w", err)
	}
	defer func() {
		<-warmer.Stop().Done()
	}()

	router, err := api.NewRouter(svcs, jwtService)
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func buildServices(db *gorm.DB, store cache.Store, cfg *app.Config) (api.Services, *services.CacheService, error) {
	users, err := services.NewUserService(db)
	if err != nil {
		return api.Services{}, nil, err
	}
	categories, err := services.NewCategoryService(db)
	if err != nil {
		return api.Services{}, nil, err
	}
	notifications, err := services.NewNotificationService(db)
	if err != nil {
		return api.Services{}, nil, err
	}
	budgets, err := services.NewBudgetService(db)
	if err != nil {
		return api.Services{}, nil, err
	}
	goals, err := services.NewGoalService(db, notifications)
	if err != nil {
		return api.Services{}, nil, err
	}
	transactions, err := services.NewTransactionService(db, budgets, notifications)
	if err != nil {
		return api.Services{}, nil, err
	}
	dashboard, err := services.NewDashboardService(db, budgets, goals)
	if err != nil {
		return api.Services{}, nil, err
	}
	reports, err := services.NewReportService(db)
	if err != nil {
		return api.Services{}, nil, err
	}

	rates := buildRateProvider(cfg)

	aggregator := services.NewServiceAggregator(
		categories, budgets, goals, transactions, notifications, dashboard, reports, users, rates)

	keys := cache.NewKeys(cfg.Cache.KeysConfig())
	cacheSvc, err := services.NewCacheService(store, keys, aggregator)
	if err != nil {
		return api.Services{}, nil, err
	}

	return api.Services{
		Users:         users,
		Categories:    categories,
		Transactions:  transactions,
		Budgets:       budgets,
		Goals:         goals,
		Notifications: notifications,
		Reports:       reports,
		Cache:         cacheSvc,
	}, cacheSvc, nil
}

func buildRateProvider(cfg *app.Config) currency.RateProvider {
	baseURL := strings.TrimSpace(cfg.Currency.BaseURL)
	if baseURL == "" {
		return currency.StaticProvider{}
	}

	provider, err := currency.NewHTTPProvider(currency.HTTPProviderConfig{
		URL:     baseURL,
		APIKey:  cfg.Currency.APIKey,
		Timeout: cfg.Currency.Timeout,
	})
	if err != nil {
		logger.WithModule("bootstrap").Warn("currency provider misconfigured, serving static rates", zap.Error(err))
		return currency.StaticProvider{}
	}
	return provider
}

func buildWarmer(cfg *app.Config, cacheSvc *services.CacheService, users *services.UserService, dbStore *cache.DatabaseStore) *maintenance.Warmer {
	opts := []maintenance.Option{
		maintenance.WithWarmingSchedule(cfg.Cache.Warming.Schedule),
		maintenance.WithMaxUsers(cfg.Cache.Warming.MaxUsers),
	}
	if !cfg.Cache.Warming.Enabled {
		return maintenance.NewWarmer(nil, nil, dbStore, opts...)
	}
	return maintenance.NewWarmer(cacheSvc, users, dbStore, opts...)
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
