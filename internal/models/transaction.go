package models

import "time"

// Transaction types.
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// Transaction is a single income or expense entry.
type Transaction struct {
	BaseModel
	UserID      string    `gorm:"type:uuid;index:idx_transactions_user_date;index:idx_transactions_user_type;not null" json:"user_id"`
	CategoryID  string    `gorm:"type:uuid;index;not null" json:"category_id"`
	Type        string    `gorm:"size:16;index:idx_transactions_user_type;not null" json:"type"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Description string    `gorm:"size:255" json:"description"`
	Date        time.Time `gorm:"index:idx_transactions_user_date;not null" json:"date"`

	Category *Category `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
}
