package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/export"
)

// ExportTransactions sends the user's filtered transactions as a spreadsheet attachment.
// The file is rendered in memory first so a failure still returns a JSON error.
// @Summary     Export transactions
// @Description Download every transaction matching the filters (unpaginated) as XLSX or CSV
// @Tags        transactions
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce     text/csv
// @Security    BearerAuth
// @Param       format    query string false "File format (xlsx, csv); default xlsx"
// @Param       type      query string false "Filter by transaction type (income, expense)"
// @Param       category  query string false "Filter by category"
// @Param       startDate query string false "Start of date range (RFC3339 or YYYY-MM-DD); needs endDate"
// @Param       endDate   query string false "End of date range, inclusive (RFC3339 or YYYY-MM-DD); needs startDate"
// @Success     200 {file} file "Exported transactions"
// @Failure     400 {object} response.Envelope "Invalid input"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     500 {object} response.Envelope "Server error"
// @Router      /transactions/export [get]
func (h *TransactionHandler) ExportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions, err := h.transactionService.GetAllUserTransactions(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, transactions); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	filename := export.Filename(format, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
