package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fintrackhq/fintrack/internal/models"
)

// migratedModels lists every persistent model in migration order.
func migratedModels() []any {
	return []any{
		&models.User{},
		&models.Category{},
		&models.Transaction{},
		&models.Budget{},
		&models.Goal{},
		&models.Notification{},
		&models.CacheEntry{},
	}
}

// AutoMigrate applies the schema for all application models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	return db.AutoMigrate(migratedModels()...)
}

// defaultCategories is the starter set created for new accounts.
var defaultCategories = []models.Category{
	{Name: "Salary", Type: models.CategoryTypeIncome, Color: "#22c55e", Icon: "banknote"},
	{Name: "Freelance", Type: models.CategoryTypeIncome, Color: "#10b981", Icon: "laptop"},
	{Name: "Groceries", Type: models.CategoryTypeExpense, Color: "#f97316", Icon: "shopping-cart"},
	{Name: "Rent", Type: models.CategoryTypeExpense, Color: "#ef4444", Icon: "home"},
	{Name: "Transport", Type: models.CategoryTypeExpense, Color: "#3b82f6", Icon: "car"},
	{Name: "Entertainment", Type: models.CategoryTypeExpense, Color: "#a855f7", Icon: "film"},
	{Name: "Utilities", Type: models.CategoryTypeExpense, Color: "#eab308", Icon: "zap"},
}

// SeedDefaultCategories inserts the starter category set for a user that has none.
func SeedDefaultCategories(db *gorm.DB, userID string) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	var count int64
	if err := db.Model(&models.Category{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, category := range defaultCategories {
		row := category
		row.UserID = userID
		if err := db.Create(&row).Error; err != nil {
			return fmt.Errorf("seed category %q: %w", row.Name, err)
		}
	}
	return nil
}

// SeedData inserts baseline records required by a fresh installation.
// Per-user data (categories) is seeded on account creation instead.
func SeedData(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	return nil
}
