package models

import "github.com/shopspring/decimal"

// User represents the user model in the database
type User struct {
	Base
	Name         string          `gorm:"size:50;not null" json:"name"`
	Email        string          `gorm:"uniqueIndex;not null" json:"email"`
	Password     string          `gorm:"not null" json:"-"`
	Budget       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"budget"`
	Transactions []Transaction   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
