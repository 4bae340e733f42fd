package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quickinvoice/internal/core/apperror"
	"quickinvoice/internal/infrastructure/http/v1/dto"
	"quickinvoice/pkg/logger"
)

// ErrorHandler turns the last error recorded on the gin context into the JSON error body.
// Handlers never write error responses themselves. Internal causes are logged, not returned.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		ctx := c.Request.Context()

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(ctx, "request error",
					"code", appErr.Code,
					"status", appErr.HTTPStatus,
					"cause", appErr.Err,
				)
			} else if appErr.HTTPStatus >= http.StatusInternalServerError {
				logger.Error(ctx, "request error", "code", appErr.Code)
			}

			c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
				Code:      appErr.Code,
				Message:   appErr.Message,
				Details:   appErr.Details,
				Retryable: appErr.Retryable,
			})
			return
		}

		logger.Error(ctx, "unhandled error", "error", err)

		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Code:    apperror.CodeInternal,
			Message: "Internal server error",
			Details: map[string]any{
				"request_id": c.GetString("request_id"),
			},
		})
	}
}
