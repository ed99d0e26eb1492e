package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/events"
	"expensetracker/internal/logger"
	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
	"expensetracker/internal/response"
	"expensetracker/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
	publisher          events.Publisher
}

// NewTransactionHandler creates a new TransactionHandler. A nil publisher disables events.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer, publisher events.Publisher) *TransactionHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &TransactionHandler{
		transactionService: transactionService,
		auditService:       auditService,
		publisher:          publisher,
	}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Any owner field in the body is ignored; the owner is the authenticated user.
type CreateTransactionRequest struct {
	Type        models.TransactionType `json:"type" enums:"income,expense"`
	Category    models.Category        `json:"category"`
	Amount      *decimal.Decimal       `json:"amount" swaggertype:"number"`
	Description string                 `json:"description"`
	Date        *string                `json:"date" example:"2024-03-15"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
// Omitted fields keep their stored value.
type UpdateTransactionRequest struct {
	Type        *models.TransactionType `json:"type" binding:"omitempty,transaction_type" enums:"income,expense"`
	Category    *models.Category        `json:"category" binding:"omitempty,transaction_category"`
	Amount      *decimal.Decimal        `json:"amount" swaggertype:"number"`
	Description *string                 `json:"description"`
	Date        *string                 `json:"date" example:"2024-03-15"`
}

// TransactionListResponse is a page of the user's transactions.
type TransactionListResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Pagination   pagination.Meta      `json:"pagination"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record an income or expense for the authenticated user
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} response.Envelope{data=models.Transaction} "Transaction created"
// @Failure     400 {object} response.Envelope "Invalid input"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     500 {object} response.Envelope "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	input := services.CreateTransactionInput{
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.Date != nil && *req.Date != "" {
		parsed, _, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, parseErr)
			return
		}
		input.Date = &parsed
	}

	transaction, err := h.transactionService.CreateTransaction(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditCreateTransaction, models.ResourceTransaction, transaction.ID, c.ClientIP(),
		map[string]interface{}{
			"type":     transaction.Type,
			"category": transaction.Category,
			"amount":   transaction.Amount.String(),
		})
	h.publish(c.Request.Context(), events.TransactionCreated, userID, transaction.ID)

	response.Success(c, http.StatusCreated, transaction)
}

// GetUserTransactions handles the retrieval of the authenticated user's transactions
// @Summary     List transactions
// @Description Get a paginated list of the user's transactions, newest first, with optional filters
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       limit     query int    false "Items per page (default 10, max 100)"
// @Param       type      query string false "Filter by transaction type (income, expense)"
// @Param       category  query string false "Filter by category"
// @Param       startDate query string false "Start of date range (RFC3339 or YYYY-MM-DD); needs endDate"
// @Param       endDate   query string false "End of date range, inclusive (RFC3339 or YYYY-MM-DD); needs startDate"
// @Success     200 {object} response.Envelope{data=TransactionListResponse} "Paginated transactions"
// @Failure     400 {object} response.Envelope "Invalid input"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     500 {object} response.Envelope "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, queryError(err))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, TransactionListResponse{
		Transactions: result.Items,
		Pagination:   result.Pagination,
	})
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		filter.Type = &txType
	}

	if v := c.Query("category"); v != "" {
		category := models.Category(v)
		filter.Category = &category
	}

	if v := c.Query("startDate"); v != "" {
		t, _, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid startDate format, use RFC3339 or YYYY-MM-DD")
		}
		filter.StartDate = &t
	}

	if v := c.Query("endDate"); v != "" {
		t, dateOnly, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid endDate format, use RFC3339 or YYYY-MM-DD")
		}
		if dateOnly {
			t = endOfDay(t)
		}
		filter.EndDate = &t
	}

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Description Get one of the user's transactions by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} response.Envelope{data=models.Transaction} "Transaction details"
// @Failure     400 {object} response.Envelope "Invalid transaction ID"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     403 {object} response.Envelope "Transaction belongs to another user"
// @Failure     404 {object} response.Envelope "Transaction not found"
// @Failure     500 {object} response.Envelope "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, transaction)
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Partially update one of the user's transactions. The merged record is re-validated.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} response.Envelope{data=models.Transaction} "Updated transaction"
// @Failure     400 {object} response.Envelope "Invalid input"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     403 {object} response.Envelope "Transaction belongs to another user"
// @Failure     404 {object} response.Envelope "Transaction not found"
// @Failure     500 {object} response.Envelope "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	updateFields := services.TransactionUpdateFields{
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
	}

	if req.Date != nil && *req.Date != "" {
		parsed, _, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, parseErr)
			return
		}
		updateFields.Date = &parsed
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, txID, updateFields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditUpdateTransaction, models.ResourceTransaction, txID, c.ClientIP(), nil)
	h.publish(c.Request.Context(), events.TransactionUpdated, userID, txID)

	response.Success(c, http.StatusOK, transaction)
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Permanently delete one of the user's transactions
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} response.Envelope "Transaction deleted"
// @Failure     400 {object} response.Envelope "Invalid transaction ID"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     403 {object} response.Envelope "Transaction belongs to another user"
// @Failure     404 {object} response.Envelope "Transaction not found"
// @Failure     500 {object} response.Envelope "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditDeleteTransaction, models.ResourceTransaction, transactionID, c.ClientIP(), nil)
	h.publish(c.Request.Context(), events.TransactionDeleted, userID, transactionID)

	response.Message(c, http.StatusOK, "Transaction deleted successfully")
}

// GetTransactionStats returns totals by type, category and month
// @Summary     Transaction statistics
// @Description Aggregate all of the user's transactions by type, by category and by calendar month (UTC)
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} response.Envelope{data=stats.Summary} "Statistics"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     500 {object} response.Envelope "Server error"
// @Router      /transactions/stats [get]
func (h *TransactionHandler) GetTransactionStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.transactionService.GetTransactionStats(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

// publish emits a transaction event. Failures are logged and never fail the request.
func (h *TransactionHandler) publish(ctx context.Context, kind events.Kind, userID, transactionID string) {
	event := events.NewEvent(kind, userID, transactionID)
	if err := h.publisher.Publish(ctx, event); err != nil {
		logger.Get().Warnw("failed to publish transaction event",
			"kind", kind,
			"transaction_id", transactionID,
			"error", err,
		)
	}
}
