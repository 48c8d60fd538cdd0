package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fintrackhq/fintrack/internal/models"
	apperrors "github.com/fintrackhq/fintrack/pkg/errors"
)

// GoalStatus is a goal together with its derived progress percentage.
type GoalStatus struct {
	models.Goal
	Progress float64 `json:"progress"`
}

// CreateGoalInput defines attributes required to persist a savings goal.
type CreateGoalInput struct {
	UserID       string
	Name         string
	Description  string
	TargetAmount float64
	TargetDate   time.Time
}

// UpdateGoalInput carries optional goal field updates.
type UpdateGoalInput struct {
	Name         *string
	Description  *string
	TargetAmount *float64
	TargetDate   *time.Time
	Status       *string
}

// GoalService manages savings goals and their progress.
type GoalService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewGoalService constructs a GoalService. The notification service is
// optional; when present, completing a goal raises a notification.
func NewGoalService(db *gorm.DB, notifications *NotificationService) (*GoalService, error) {
	if db == nil {
		return nil, errors.New("goal service: db is required")
	}
	return &GoalService{db: db, notifications: notifications}, nil
}

// ListForUser returns every goal owned by the user ordered by target date.
func (s *GoalService) ListForUser(ctx context.Context, userID string) ([]models.Goal, error) {
	ctx = ensureContext(ctx)

	var rows []models.Goal
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("target_date ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("goal service: list goals: %w", err)
	}
	return rows, nil
}

// ActiveForUser returns active goals ordered by ascending target date, each
// carrying its progress percentage.
func (s *GoalService) ActiveForUser(ctx context.Context, userID string) ([]GoalStatus, error) {
	ctx = ensureContext(ctx)

	var rows []models.Goal
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.GoalStatusActive).
		Order("target_date ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("goal service: list active goals: %w", err)
	}

	statuses := make([]GoalStatus, 0, len(rows))
	for _, row := range rows {
		statuses = append(statuses, GoalStatus{Goal: row, Progress: row.ProgressPercentage()})
	}
	return statuses, nil
}

// Create registers a new goal.
func (s *GoalService) Create(ctx context.Context, input CreateGoalInput) (*models.Goal, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("goal service: user id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("Goal name is required")
	}
	if input.TargetAmount <= 0 {
		return nil, apperrors.NewBadRequest("Goal target amount must be positive")
	}

	row := models.Goal{
		UserID:       userID,
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		TargetAmount: input.TargetAmount,
		TargetDate:   input.TargetDate,
		Status:       models.GoalStatusActive,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("goal service: create goal: %w", err)
	}
	return &row, nil
}

// Update applies partial changes to a goal owned by the user.
func (s *GoalService) Update(ctx context.Context, userID, goalID string, input UpdateGoalInput) (*models.Goal, error) {
	ctx = ensureContext(ctx)

	row, err := s.load(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("Goal name is required")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.TargetAmount != nil {
		if *input.TargetAmount <= 0 {
			return nil, apperrors.NewBadRequest("Goal target amount must be positive")
		}
		updates["target_amount"] = *input.TargetAmount
	}
	if input.TargetDate != nil {
		updates["target_date"] = *input.TargetDate
	}
	if input.Status != nil {
		status := strings.TrimSpace(*input.Status)
		switch status {
		case models.GoalStatusActive, models.GoalStatusCompleted, models.GoalStatusCancelled:
			updates["status"] = status
		default:
			return nil, apperrors.NewBadRequest("Invalid goal status")
		}
	}

	if len(updates) == 0 {
		return row, nil
	}

	if err := s.db.WithContext(ctx).Model(row).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("goal service: update goal: %w", err)
	}
	return row, nil
}

// Contribute adds to a goal's saved amount, marking it completed when the
// target is reached.
func (s *GoalService) Contribute(ctx context.Context, userID, goalID string, amount float64) (*models.Goal, error) {
	ctx = ensureContext(ctx)

	if amount <= 0 {
		return nil, apperrors.NewBadRequest("Contribution amount must be positive")
	}

	row, err := s.load(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if row.Status != models.GoalStatusActive {
		return nil, apperrors.NewBadRequest("Goal is not active")
	}

	row.CurrentAmount += amount
	completed := row.IsCompleted()

	updates := map[string]any{"current_amount": row.CurrentAmount}
	if completed {
		row.Status = models.GoalStatusCompleted
		updates["status"] = models.GoalStatusCompleted
	}

	if err := s.db.WithContext(ctx).Model(row).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("goal service: contribute: %w", err)
	}

	if completed && s.notifications != nil {
		_, err := s.notifications.Create(ctx, CreateNotificationInput{
			UserID:  userID,
			Type:    models.NotificationGoalCompleted,
			Title:   "Goal Reached: " + row.Name,
			Message: fmt.Sprintf("You reached your savings goal %q.", row.Name),
		})
		if err != nil {
			return nil, err
		}
	}

	return row, nil
}

// Delete removes a goal owned by the user.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", goalID, userID).
		Delete(&models.Goal{})
	if result.Error != nil {
		return fmt.Errorf("goal service: delete goal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *GoalService) load(ctx context.Context, userID, goalID string) (*models.Goal, error) {
	var row models.Goal
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", goalID, userID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("goal service: load goal: %w", err)
	}
	return &row, nil
}
