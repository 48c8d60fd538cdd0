package models

// User represents an account holder. Authentication is handled upstream; the
// application only needs the profile fields and the display currency.
type User struct {
	BaseModel
	Name         string `gorm:"size:120;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Currency     string `gorm:"size:3;default:USD" json:"currency"`

	Categories   []Category    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Transactions []Transaction `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Budgets      []Budget      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Goals        []Goal        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
