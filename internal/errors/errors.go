// Package errors provides the application error type for the expense tracker API.
// All service-layer errors should use AppError so that the HTTP boundary can
// report a stable kind and code without leaking internal details to clients.
package errors

import "net/http"

// Kind is the closed set of error categories exposed to clients.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindServer         Kind = "server"
)

// AppError represents a structured application error with a kind, a machine
// readable code, a human-readable message, an HTTP status and an optional
// internal error that is logged but never rendered.
type AppError struct {
	Kind       Kind   `json:"kind"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so that
// errors.Is matches copies made by Wrap and WithMessage against their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same kind/code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Kind:       sentinel.Kind,
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Kind:       sentinel.Kind,
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Kind: KindAuthentication, Code: "UNAUTHORIZED", Message: "Not authorized, no token", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Kind: KindAuthentication, Code: "INVALID_TOKEN", Message: "Not authorized, token failed", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Kind: KindAuthentication, Code: "INVALID_CREDENTIALS", Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Kind: KindValidation, Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Kind: KindNotFound, Code: "NOT_FOUND", Message: "Route not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Kind: KindServer, Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors. Duplicate email is a conflict but keeps status 400, which is
// what existing clients of the API expect.
var (
	ErrUserNotFound   = &AppError{Kind: KindNotFound, Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Kind: KindConflict, Code: "DUPLICATE_EMAIL", Message: "User already exists", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Kind: KindNotFound, Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrTransactionForbidden   = &AppError{Kind: KindAuthorization, Code: "TRANSACTION_FORBIDDEN", Message: "Not authorized to access this transaction", StatusCode: http.StatusForbidden}
	ErrMissingFields          = &AppError{Kind: KindValidation, Code: "MISSING_FIELDS", Message: "Please provide all required fields", StatusCode: http.StatusBadRequest}
	ErrInvalidTransactionType = &AppError{Kind: KindValidation, Code: "INVALID_TRANSACTION_TYPE", Message: "Transaction type must be income or expense", StatusCode: http.StatusBadRequest}
	ErrInvalidCategory        = &AppError{Kind: KindValidation, Code: "INVALID_CATEGORY", Message: "Category is not valid for this transaction type", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount          = &AppError{Kind: KindValidation, Code: "INVALID_AMOUNT", Message: "Amount must be positive", StatusCode: http.StatusBadRequest}
)
