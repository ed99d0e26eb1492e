package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction. The stored
// amount is never negative; the type carries the sign.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionTypes lists the supported types in display order.
var TransactionTypes = []TransactionType{TransactionTypeIncome, TransactionTypeExpense}

// Valid reports whether t is a supported transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Allows reports whether c belongs to the category set of t.
func (t TransactionType) Allows(c Category) bool {
	for _, candidate := range CategoriesFor(t) {
		if candidate == c {
			return true
		}
	}
	return false
}

// Transaction represents a financial transaction owned by a single user.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index:idx_transactions_user_date,priority:1;index:idx_transactions_user_category,priority:1" json:"user_id"`
	Type        TransactionType `gorm:"size:16;not null" json:"type"`
	Category    Category        `gorm:"size:32;not null;index:idx_transactions_user_category,priority:2" json:"category"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Description string          `gorm:"size:200;not null" json:"description"`
	Date        time.Time       `gorm:"not null;index:idx_transactions_user_date,priority:2,sort:desc" json:"date"`
}
