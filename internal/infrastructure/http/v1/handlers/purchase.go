package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"smeerp/internal/core/id"
	"smeerp/internal/domain/approval"
	"smeerp/internal/domain/documents/purchase"
	"smeerp/internal/infrastructure/http/v1/dto"
)

// PurchaseService is the purchase order approval workflow.
type PurchaseService interface {
	GetByID(ctx context.Context, orderID id.ID) (*purchase.Order, error)
	Confirm(ctx context.Context, orderID id.ID) (*purchase.Order, error)
	Approve(ctx context.Context, orderID id.ID) (*purchase.Order, error)
	Refuse(ctx context.Context, orderID id.ID, reason string) (*purchase.Order, error)
	AddApprover(ctx context.Context, orderID, userID id.ID) (*approval.Approver, error)
}

// PurchaseHandler handles purchase order HTTP requests.
type PurchaseHandler struct {
	*BaseHandler
	service PurchaseService
}

// NewPurchaseHandler creates a new purchase order handler.
func NewPurchaseHandler(base *BaseHandler, service PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service}
}

// Get handles GET /purchase-orders/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}
	order, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// Confirm handles POST /purchase-orders/:id/confirm.
func (h *PurchaseHandler) Confirm(c *gin.Context) {
	h.transition(c, "confirm", h.service.Confirm)
}

// Approve handles POST /purchase-orders/:id/approve.
func (h *PurchaseHandler) Approve(c *gin.Context) {
	h.transition(c, "approve", h.service.Approve)
}

// Refuse handles POST /purchase-orders/:id/refuse.
func (h *PurchaseHandler) Refuse(c *gin.Context) {
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.RefuseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.service.Refuse(c.Request.Context(), orderID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Transitioned(c, purchase.DocumentType, "refuse", order)
}

// AddApprover handles POST /purchase-orders/:id/approvers.
func (h *PurchaseHandler) AddApprover(c *gin.Context) {
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.AddApproverRequest
	if !h.BindJSON(c, &req) {
		return
	}
	approver, err := h.service.AddApprover(c.Request.Context(), orderID, id.MustParse(req.UserID))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, approver)
}

func (h *PurchaseHandler) transition(c *gin.Context, action string, fn func(context.Context, id.ID) (*purchase.Order, error)) {
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}
	order, err := fn(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Transitioned(c, purchase.DocumentType, action, order)
}
