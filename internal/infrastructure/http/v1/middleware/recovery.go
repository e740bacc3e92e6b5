package middleware

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"smeerp/internal/core/apperror"
	"smeerp/pkg/logger"
)

// Recovery converts a panic in a handler into an internal error for
// ErrorHandler to render. The stack goes to the structured log only; gin's
// own writer is silenced.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context(), "panic recovered",
			"route", c.FullPath(),
			"error", recovered,
			"stack", string(debug.Stack()),
		)
		_ = c.Error(apperror.NewInternal(fmt.Errorf("panic: %v", recovered)).
			WithDetail("request_id", c.GetString("request_id")))
		c.Abort()
	})
}
