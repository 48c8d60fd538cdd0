package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	iauth "github.com/fintrackhq/fintrack/internal/auth"
	"github.com/fintrackhq/fintrack/internal/handlers"
	"github.com/fintrackhq/fintrack/internal/middleware"
	"github.com/fintrackhq/fintrack/internal/services"
)

// Services bundles the constructed service layer for route registration.
type Services struct {
	Users         *services.UserService
	Categories    *services.CategoryService
	Transactions  *services.TransactionService
	Budgets       *services.BudgetService
	Goals         *services.GoalService
	Notifications *services.NotificationService
	Reports       *services.ReportService
	Cache         *services.CacheService
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(svcs Services, jwt *iauth.JWTService) (*gin.Engine, error) {
	if svcs.Cache == nil {
		return nil, fmt.Errorf("cache service must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.GET("/health", handlers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(svcs.Users, jwt)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))
	// The blanket clear runs after every successful mutation; handlers add
	// the narrow per-region clears themselves.
	api.Use(middleware.CacheInvalidate(svcs.Cache))

	transactionHandler := handlers.NewTransactionHandler(svcs.Transactions, svcs.Cache)
	transactions := api.Group("/transactions")
	{
		transactions.GET("", transactionHandler.List)
		transactions.GET("/summary", transactionHandler.Summary)
		transactions.GET("/:id", transactionHandler.Get)
		transactions.POST("", transactionHandler.Create)
		transactions.PUT("/:id", transactionHandler.Update)
		transactions.DELETE("/:id", transactionHandler.Delete)
	}

	categoryHandler := handlers.NewCategoryHandler(svcs.Categories, svcs.Cache)
	categories := api.Group("/categories")
	{
		categories.GET("", categoryHandler.List)
		categories.POST("", categoryHandler.Create)
		categories.PUT("/:id", categoryHandler.Update)
		categories.DELETE("/:id", categoryHandler.Delete)
	}

	budgetHandler := handlers.NewBudgetHandler(svcs.Budgets, svcs.Cache)
	budgets := api.Group("/budgets")
	{
		budgets.GET("", budgetHandler.List)
		budgets.GET("/active", budgetHandler.Active)
		budgets.POST("", budgetHandler.Create)
		budgets.PUT("/:id", budgetHandler.Update)
		budgets.DELETE("/:id", budgetHandler.Delete)
	}

	goalHandler := handlers.NewGoalHandler(svcs.Goals, svcs.Cache)
	goals := api.Group("/goals")
	{
		goals.GET("", goalHandler.List)
		goals.GET("/active", goalHandler.Active)
		goals.POST("", goalHandler.Create)
		goals.PUT("/:id", goalHandler.Update)
		goals.POST("/:id/contribute", goalHandler.Contribute)
		goals.DELETE("/:id", goalHandler.Delete)
	}

	notificationHandler := handlers.NewNotificationHandler(svcs.Notifications, svcs.Cache)
	notifications := api.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	dashboardHandler := handlers.NewDashboardHandler(svcs.Cache)
	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("", dashboardHandler.Show)
		dashboard.GET("/monthly-stats", dashboardHandler.MonthlyStats)
		dashboard.GET("/currency-rates", dashboardHandler.CurrencyRates)
	}

	reportHandler := handlers.NewReportHandler(svcs.Reports, svcs.Cache)
	reports := api.Group("/reports")
	{
		reports.GET("/monthly", reportHandler.Monthly)
		reports.GET("/yearly", reportHandler.Yearly)
		reports.GET("/category-breakdown", reportHandler.CategoryBreakdown)
		reports.GET("/top-expenses", reportHandler.TopExpenses)
		reports.GET("/trend", reportHandler.Trend)
	}

	profileHandler := handlers.NewProfileHandler(svcs.Users, svcs.Cache)
	profile := api.Group("/profile")
	{
		profile.GET("", profileHandler.Show)
		profile.PUT("", profileHandler.Update)
	}

	adminHandler := handlers.NewAdminCacheHandler(svcs.Cache)
	admin := api.Group("/admin/cache")
	{
		admin.POST("/flush", adminHandler.Flush)
		admin.POST("/warm/:id", adminHandler.Warm)
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
