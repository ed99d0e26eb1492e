package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/middleware"
	"expensetracker/internal/response"
	"expensetracker/internal/uuid"
)

const dateOnlyLayout = "2006-01-02"

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
//
//nolint:unparam // param is generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// respondWithError writes the failure envelope for err.
func respondWithError(c *gin.Context, err error) {
	response.Error(c, err)
}

// parseFlexibleTime accepts RFC3339 timestamps or plain YYYY-MM-DD dates (UTC midnight).
// dateOnly reports whether the value had no time component.
func parseFlexibleTime(value string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), false, nil
	}
	if t, err = time.Parse(dateOnlyLayout, value); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, apperrors.WithMessage(apperrors.ErrInvalidInput,
		"invalid date "+value+", use RFC3339 or YYYY-MM-DD")
}

// endOfDay returns the last representable instant of t's day.
func endOfDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// bindError turns a gin binding failure into a stable client message. Decoder
// and validator text stays out of responses.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fieldMessage(verrs[0]))
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, typeErr.Field+" has the wrong type")
	}

	return apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid request body")
}

// queryError is bindError for query strings.
func queryError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return bindError(err)
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid query parameters")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
