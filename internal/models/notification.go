package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types raised by the budget monitor and account events.
const (
	NotificationBudgetWarning  = "budget_warning"
	NotificationBudgetExceeded = "budget_exceeded"
	NotificationGoalCompleted  = "goal_completed"
)

// Notification is an in-app message shown to a single user.
type Notification struct {
	BaseModel
	UserID   string         `gorm:"type:uuid;index:idx_notifications_user_read;not null" json:"user_id"`
	Type     string         `gorm:"size:64;not null" json:"type"`
	Title    string         `gorm:"size:255" json:"title"`
	Message  string         `gorm:"size:1000" json:"message"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`
	IsRead   bool           `gorm:"index:idx_notifications_user_read;default:false" json:"is_read"`
	ReadAt   *time.Time     `json:"read_at,omitempty"`
}
