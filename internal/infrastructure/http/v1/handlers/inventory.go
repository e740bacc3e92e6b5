package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"smeerp/internal/core/id"
	"smeerp/internal/domain/documents/inventory"
	"smeerp/internal/infrastructure/http/v1/dto"
)

// InventoryService is the stock count workflow.
type InventoryService interface {
	GetByID(ctx context.Context, docID id.ID) (*inventory.Inventory, error)
	SetDate(ctx context.Context, docID id.ID, date time.Time) (*inventory.Inventory, error)
	Start(ctx context.Context, docID id.ID) (*inventory.Inventory, error)
	Validate(ctx context.Context, docID id.ID) (*inventory.Inventory, error)
}

// InventoryHandler handles HTTP requests for inventory adjustments.
type InventoryHandler struct {
	*BaseHandler
	service InventoryService
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service InventoryService) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Get handles GET /inventories/:id.
func (h *InventoryHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}
	inv, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// SetDate handles POST /inventories/:id/date.
func (h *InventoryHandler) SetDate(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.SetDateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inv, err := h.service.SetDate(c.Request.Context(), docID, *req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Transitioned(c, inventory.DocumentType, "backdate", inv)
}

// Start handles POST /inventories/:id/start.
func (h *InventoryHandler) Start(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}
	inv, err := h.service.Start(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Transitioned(c, inventory.DocumentType, "start", inv)
}

// Validate handles POST /inventories/:id/validate.
func (h *InventoryHandler) Validate(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}
	inv, err := h.service.Validate(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Transitioned(c, inventory.DocumentType, "validate", inv)
}
