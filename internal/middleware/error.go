package middleware

import (
	"github.com/gin-gonic/gin"

	"expensetracker/internal/response"
)

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context with c.Error into the standard failure envelope, unless the handler
// already wrote a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// Process the last error (most relevant in a middleware chain)
		response.Error(c, c.Errors.Last().Err)
	}
}
