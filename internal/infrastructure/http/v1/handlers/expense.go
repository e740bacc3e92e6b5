package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"smeerp/internal/core/id"
	"smeerp/internal/domain/approval"
	"smeerp/internal/domain/documents/expense"
	"smeerp/internal/infrastructure/http/v1/dto"
)

// ExpenseService is the expense sheet workflow.
type ExpenseService interface {
	GetByID(ctx context.Context, sheetID id.ID) (*expense.Sheet, error)
	Submit(ctx context.Context, sheetID id.ID) (*expense.Sheet, error)
	Approve(ctx context.Context, sheetID id.ID) (*expense.Sheet, error)
	Refuse(ctx context.Context, sheetID id.ID, reason string) (*expense.Sheet, error)
	AddApprover(ctx context.Context, sheetID, userID id.ID) (*approval.Approver, error)
}

// ExpenseHandler handles expense sheet HTTP requests.
type ExpenseHandler struct {
	*BaseHandler
	service ExpenseService
}

// NewExpenseHandler creates a new expense sheet handler.
func NewExpenseHandler(base *BaseHandler, service ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{BaseHandler: base, service: service}
}

// Get handles GET /expense-sheets/:id.
func (h *ExpenseHandler) Get(c *gin.Context) {
	sheetID, ok := h.ParseID(c)
	if !ok {
		return
	}
	sheet, err := h.service.GetByID(c.Request.Context(), sheetID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sheet)
}

// Submit handles POST /expense-sheets/:id/submit.
func (h *ExpenseHandler) Submit(c *gin.Context) {
	h.transition(c, "submit", h.service.Submit)
}

// Approve handles POST /expense-sheets/:id/approve.
func (h *ExpenseHandler) Approve(c *gin.Context) {
	h.transition(c, "approve", h.service.Approve)
}

// Refuse handles POST /expense-sheets/:id/refuse.
func (h *ExpenseHandler) Refuse(c *gin.Context) {
	sheetID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.RefuseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sheet, err := h.service.Refuse(c.Request.Context(), sheetID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Transitioned(c, expense.DocumentType, "refuse", sheet)
}

// AddApprover handles POST /expense-sheets/:id/approvers.
func (h *ExpenseHandler) AddApprover(c *gin.Context) {
	sheetID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.AddApproverRequest
	if !h.BindJSON(c, &req) {
		return
	}
	approver, err := h.service.AddApprover(c.Request.Context(), sheetID, id.MustParse(req.UserID))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, approver)
}

func (h *ExpenseHandler) transition(c *gin.Context, action string, fn func(context.Context, id.ID) (*expense.Sheet, error)) {
	sheetID, ok := h.ParseID(c)
	if !ok {
		return
	}
	sheet, err := fn(c.Request.Context(), sheetID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Transitioned(c, expense.DocumentType, action, sheet)
}
