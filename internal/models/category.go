package models

// Category types.
const (
	CategoryTypeIncome  = "income"
	CategoryTypeExpense = "expense"
)

// Category groups transactions and budgets for a single user.
type Category struct {
	BaseModel
	UserID string `gorm:"type:uuid;index:idx_categories_user_type;not null" json:"user_id"`
	Name   string `gorm:"size:120;not null" json:"name"`
	Type   string `gorm:"size:16;index:idx_categories_user_type;not null" json:"type"`
	Color  string `gorm:"size:16" json:"color"`
	Icon   string `gorm:"size:64" json:"icon"`
}
