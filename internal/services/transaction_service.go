package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
	"expensetracker/internal/stats"
)

const maxDescriptionLength = 200

// maxAmount is the first value that no longer fits numeric(14,2).
var maxAmount = decimal.New(1, 12)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db         *gorm.DB
	statsGroup singleflight.Group
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction records a new transaction owned by userID. The owner is
// always the caller; the date defaults to now.
func (s *transactionService) CreateTransaction(userID string, input CreateTransactionInput) (*models.Transaction, error) {
	description := strings.TrimSpace(input.Description)

	// A zero amount counts as missing.
	if input.Type == "" || input.Category == "" || description == "" ||
		input.Amount == nil || input.Amount.IsZero() {
		return nil, apperrors.ErrMissingFields
	}

	if err := validateTransactionFields(input.Type, input.Category, *input.Amount, description); err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if input.Date != nil && !input.Date.IsZero() {
		date = input.Date.UTC()
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Type:        input.Type,
		Category:    input.Category,
		Amount:      *input.Amount,
		Description: description,
		Date:        date,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// validateTransactionFields checks a complete transaction: the type, the
// category against the type's category set, the amount and the description.
func validateTransactionFields(t models.TransactionType, c models.Category, amount decimal.Decimal, description string) error {
	if !t.Valid() {
		return apperrors.ErrInvalidTransactionType
	}
	if !t.Allows(c) {
		return apperrors.WithMessage(apperrors.ErrInvalidCategory,
			"Category '"+string(c)+"' is not valid for "+string(t)+" transactions")
	}
	if err := validateMoney(amount, apperrors.ErrInvalidAmount, "Amount"); err != nil {
		return err
	}
	if strings.TrimSpace(description) == "" {
		return apperrors.WithMessage(apperrors.ErrMissingFields, "Please provide a description")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Description cannot exceed 200 characters")
	}
	return nil
}

// validateMoney checks that amount fits a numeric(14,2) column without
// rounding: not negative, at most two decimal places, below maxAmount.
func validateMoney(amount decimal.Decimal, sentinel *apperrors.AppError, label string) error {
	if amount.IsNegative() {
		return apperrors.WithMessage(sentinel, label+" cannot be negative")
	}
	if !amount.Equal(amount.Round(2)) {
		return apperrors.WithMessage(sentinel, label+" cannot have more than two decimal places")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return apperrors.WithMessage(sentinel, label+" is too large")
	}
	return nil
}

// validateFilter rejects filter values outside the fixed enums.
func validateFilter(f TransactionFilter) error {
	if f.Type != nil && !f.Type.Valid() {
		return apperrors.ErrInvalidTransactionType
	}
	if f.Category != nil && !f.Category.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidCategory, "Unknown category '"+string(*f.Category)+"'")
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "endDate must not be before startDate")
	}
	return nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	// A single bound is ignored.
	if f.StartDate != nil && f.EndDate != nil {
		q = q.Where("date >= ? AND date <= ?", f.StartDate.UTC(), f.EndDate.UTC())
	}
	return q
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	page.Normalize()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter).Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Order("id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.Limit, totalItems)
	return &result, nil
}

// GetAllUserTransactions returns every transaction matching filter, newest first.
func (s *transactionService) GetAllUserTransactions(userID string, filter TransactionFilter) ([]models.Transaction, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	q := applyTransactionFilters(s.db.Where("user_id = ?", userID), filter)

	transactions := []models.Transaction{}
	if err := q.Order("date DESC").Order("id DESC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// findOwned loads a transaction and checks that userID owns it. A missing
// record is reported before a foreign one.
func (s *transactionService) findOwned(userID, transactionID string, forbidden *apperrors.AppError) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ?", transactionID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transaction.UserID != userID {
		return nil, forbidden
	}
	return &transaction, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	return s.findOwned(userID, transactionID, apperrors.ErrTransactionForbidden)
}

// UpdateTransaction merges fields into the stored transaction, re-validates
// the result and saves it. The owner never changes.
func (s *transactionService) UpdateTransaction(userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error) {
	transaction, err := s.findOwned(userID, transactionID,
		apperrors.WithMessage(apperrors.ErrTransactionForbidden, "Not authorized to update this transaction"))
	if err != nil {
		return nil, err
	}

	if fields.Type != nil {
		transaction.Type = *fields.Type
	}
	if fields.Category != nil {
		transaction.Category = *fields.Category
	}
	if fields.Amount != nil {
		transaction.Amount = *fields.Amount
	}
	if fields.Description != nil {
		transaction.Description = strings.TrimSpace(*fields.Description)
	}
	if fields.Date != nil && !fields.Date.IsZero() {
		transaction.Date = fields.Date.UTC()
	}

	if err := validateTransactionFields(transaction.Type, transaction.Category, transaction.Amount, transaction.Description); err != nil {
		return nil, err
	}

	if err := s.db.Save(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// DeleteTransaction permanently removes a transaction owned by userID.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.findOwned(userID, transactionID,
		apperrors.WithMessage(apperrors.ErrTransactionForbidden, "Not authorized to delete this transaction"))
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// statsRow is the projection scanned for aggregation.
type statsRow struct {
	Type     models.TransactionType
	Category models.Category
	Amount   decimal.Decimal
	Date     time.Time
}

// GetTransactionStats aggregates all of the user's transactions. Concurrent
// calls for the same user share one scan; results are never cached.
func (s *transactionService) GetTransactionStats(userID string) (*stats.Summary, error) {
	v, err, _ := s.statsGroup.Do(userID, func() (interface{}, error) {
		return s.computeStats(userID)
	})
	if err != nil {
		return nil, err
	}
	summary := v.(stats.Summary)
	return &summary, nil
}

func (s *transactionService) computeStats(userID string) (stats.Summary, error) {
	rows, err := s.db.Model(&models.Transaction{}).
		Select("type, category, amount, date").
		Where("user_id = ?", userID).
		Order("date ASC").
		Order("id ASC").
		Rows()
	if err != nil {
		return stats.Summary{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	defer rows.Close()

	acc := stats.NewAccumulator()
	for rows.Next() {
		var row statsRow
		if err := s.db.ScanRows(rows, &row); err != nil {
			return stats.Summary{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		acc.Add(stats.Record{
			Type:     row.Type,
			Category: row.Category,
			Amount:   row.Amount,
			Date:     row.Date,
		})
	}
	if err := rows.Err(); err != nil {
		return stats.Summary{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return acc.Summary(), nil
}
