package middleware

import (
	"github.com/gin-gonic/gin"

	"smeerp/internal/core/apperror"
	"smeerp/pkg/logger"
)

// ErrorHandler renders the last error a handler recorded as
// {"error": {"code", "message", "details"}}. Errors that are not
// *apperror.AppError become a 500 with a generic message; causes are
// logged and never sent.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		ctx := c.Request.Context()

		appErr, ok := apperror.AsAppError(err)
		if !ok {
			logger.Error(ctx, "unhandled error", "error", err)
			appErr = apperror.NewInternal(err).WithDetail("request_id", c.GetString("request_id"))
		} else if appErr.Err != nil {
			log := logger.Warn
			if appErr.HTTPStatus >= 500 {
				log = logger.Error
			}
			log(ctx, "request error", "code", appErr.Code, "cause", appErr.Err)
		}

		c.JSON(appErr.HTTPStatus, gin.H{"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
			"details": appErr.Details,
		}})
	}
}
