package models

import "time"

// Goal statuses.
const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusCancelled = "cancelled"
)

// Goal tracks progress towards a savings target.
type Goal struct {
	BaseModel
	UserID        string    `gorm:"type:uuid;index:idx_goals_user_status;not null" json:"user_id"`
	Name          string    `gorm:"size:120;not null" json:"name"`
	Description   string    `gorm:"size:500" json:"description"`
	TargetAmount  float64   `gorm:"not null" json:"target_amount"`
	CurrentAmount float64   `gorm:"default:0" json:"current_amount"`
	TargetDate    time.Time `gorm:"index" json:"target_date"`
	Status        string    `gorm:"size:16;index:idx_goals_user_status;default:active" json:"status"`
}

// ProgressPercentage returns saved progress as a percentage capped at 100.
func (g Goal) ProgressPercentage() float64 {
	if g.TargetAmount == 0 {
		return 0
	}
	pct := g.CurrentAmount / g.TargetAmount * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// IsCompleted reports whether the target has been reached.
func (g Goal) IsCompleted() bool {
	return g.CurrentAmount >= g.TargetAmount
}
