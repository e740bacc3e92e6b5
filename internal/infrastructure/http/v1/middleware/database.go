package middleware

import (
	"github.com/gin-gonic/gin"

	"smeerp/internal/infrastructure/storage/postgres"
)

// Database stores the TxManager in the request context for repositories.
// It must run before any handler that touches the store.
func Database(txManager *postgres.TxManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(postgres.WithTxManager(c.Request.Context(), txManager))
		c.Next()
	}
}
