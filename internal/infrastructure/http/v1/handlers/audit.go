package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"smeerp/internal/core/id"
	"smeerp/internal/infrastructure/storage/postgres"
)

// AuditHistory lists an entity's audit trail, newest first.
type AuditHistory interface {
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

// AuditHandler serves audit trails.
type AuditHandler struct {
	*BaseHandler
	history AuditHistory
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, history AuditHistory) *AuditHandler {
	return &AuditHandler{BaseHandler: base, history: history}
}

// History handles GET /audit/:entityType/:id?limit=N.
func (h *AuditHandler) History(c *gin.Context) {
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}
	limit, ok := h.LimitQuery(c, 50, 500)
	if !ok {
		return
	}

	entries, err := h.history.History(c.Request.Context(), c.Param("entityType"), entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []postgres.AuditEntry{}
	}
	h.OK(c, gin.H{"items": entries})
}
