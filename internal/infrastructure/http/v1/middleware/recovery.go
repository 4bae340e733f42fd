// Package middleware provides the gin middleware chain of the HTTP API.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"quickinvoice/internal/core/apperror"
	"quickinvoice/internal/infrastructure/http/v1/dto"
	"quickinvoice/pkg/logger"
)

// Recovery converts a handler panic into a 500 response.
// It sits outside ErrorHandler, so it writes the body itself.
// The stack is logged, never returned to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", rec,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				_ = c.Error(apperror.NewInternal(fmt.Errorf("panic: %v", rec)))
				if c.Writer.Written() {
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Code:    apperror.CodeInternal,
					Message: "Internal server error",
					Details: map[string]any{"request_id": c.GetString("request_id")},
				})
			}
		}()
		c.Next()
	}
}
