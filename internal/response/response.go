// Package response writes the JSON envelope shared by every endpoint:
//
//	{"success": true, "data": ...}
//	{"success": true, "message": "..."}
//	{"success": false, "message": "...", "error": {"kind": "...", "code": "..."}}
package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/logger"
)

// Envelope is the response body shape. It is exported for API docs and clients.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody identifies a failure by kind and code.
type ErrorBody struct {
	Kind apperrors.Kind `json:"kind"`
	Code string         `json:"code"`
}

// Success writes data with the given status.
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// Message writes a success envelope carrying only a message.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: true, Message: message})
}

// Error writes err as a failure envelope. AppErrors keep their status, kind,
// code and message; anything else is logged and reported as an internal error.
func Error(c *gin.Context, err error) {
	appErr := resolve(c, err)
	c.JSON(appErr.StatusCode, failure(appErr))
}

// Abort is Error followed by aborting the handler chain.
func Abort(c *gin.Context, err error) {
	appErr := resolve(c, err)
	c.AbortWithStatusJSON(appErr.StatusCode, failure(appErr))
}

func failure(appErr *apperrors.AppError) Envelope {
	return Envelope{
		Success: false,
		Message: appErr.Message,
		Error:   &ErrorBody{Kind: appErr.Kind, Code: appErr.Code},
	}
}

func resolve(c *gin.Context, err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		return appErr
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	return apperrors.ErrInternalServer
}
