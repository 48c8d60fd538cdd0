package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/fintrackhq/fintrack/internal/models"
	apperrors "github.com/fintrackhq/fintrack/pkg/errors"
)

// CreateCategoryInput defines attributes required to persist a category.
type CreateCategoryInput struct {
	UserID string
	Name   string
	Type   string
	Color  string
	Icon   string
}

// UpdateCategoryInput carries optional category field updates.
type UpdateCategoryInput struct {
	Name  *string
	Color *string
	Icon  *string
}

// CategoryService manages per-user transaction categories.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(db *gorm.DB) (*CategoryService, error) {
	if db == nil {
		return nil, errors.New("category service: db is required")
	}
	return &CategoryService{db: db}, nil
}

// ListForUser returns every category owned by the user, ordered by name.
func (s *CategoryService) ListForUser(ctx context.Context, userID string) ([]models.Category, error) {
	ctx = ensureContext(ctx)

	var rows []models.Category
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("category service: list categories: %w", err)
	}
	return rows, nil
}

// Get loads a single category owned by the user.
func (s *CategoryService) Get(ctx context.Context, userID, categoryID string) (*models.Category, error) {
	ctx = ensureContext(ctx)

	var row models.Category
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", categoryID, userID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("category service: load category: %w", err)
	}
	return &row, nil
}

// Create registers a new category.
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("category service: user id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("Category name is required")
	}

	categoryType := strings.TrimSpace(input.Type)
	if categoryType != models.CategoryTypeIncome && categoryType != models.CategoryTypeExpense {
		return nil, apperrors.NewBadRequest("Category type must be income or expense")
	}

	row := models.Category{
		UserID: userID,
		Name:   name,
		Type:   categoryType,
		Color:  strings.TrimSpace(input.Color),
		Icon:   strings.TrimSpace(input.Icon),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("category service: create category: %w", err)
	}
	return &row, nil
}

// Update applies partial changes to a category owned by the user.
func (s *CategoryService) Update(ctx context.Context, userID, categoryID string, input UpdateCategoryInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	row, err := s.Get(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("Category name is required")
		}
		updates["name"] = name
	}
	if input.Color != nil {
		updates["color"] = strings.TrimSpace(*input.Color)
	}
	if input.Icon != nil {
		updates["icon"] = strings.TrimSpace(*input.Icon)
	}

	if len(updates) == 0 {
		return row, nil
	}

	if err := s.db.WithContext(ctx).Model(row).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("category service: update category: %w", err)
	}
	return row, nil
}

// Delete removes a category owned by the user. Transactions keep their rows;
// the category reference is nulled by the schema constraint.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Delete(&models.Category{})
	if result.Error != nil {
		return fmt.Errorf("category service: delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
