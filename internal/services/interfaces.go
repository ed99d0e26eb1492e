package services

import (
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
	"expensetracker/internal/stats"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(name, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	UpdateProfile(id string, fields ProfileUpdateFields) (*models.User, error)
}

// ProfileUpdateFields holds the optional profile fields to change.
type ProfileUpdateFields struct {
	Name   *string
	Budget *decimal.Decimal
}

// TransactionFilter holds optional filter parameters for listing transactions.
// The date range applies only when both bounds are set.
type TransactionFilter struct {
	Type      *models.TransactionType
	Category  *models.Category
	StartDate *time.Time
	EndDate   *time.Time
}

// CreateTransactionInput carries the fields of a new transaction. Amount is a
// pointer so that a missing amount can be told apart from zero.
type CreateTransactionInput struct {
	Type        models.TransactionType
	Category    models.Category
	Amount      *decimal.Decimal
	Description string
	Date        *time.Time
}

// TransactionUpdateFields holds the optional fields to change on a transaction.
// Nil fields keep their stored value.
type TransactionUpdateFields struct {
	Type        *models.TransactionType
	Category    *models.Category
	Amount      *decimal.Decimal
	Description *string
	Date        *time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, input CreateTransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetAllUserTransactions(userID string, filter TransactionFilter) ([]models.Transaction, error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetTransactionStats(userID string) (*stats.Summary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID string, action models.AuditAction, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
