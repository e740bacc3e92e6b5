package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"smeerp/internal/core/id"
	"smeerp/internal/domain/documents/scrap"
	"smeerp/internal/infrastructure/http/v1/dto"
)

// ScrapService is the scrap order workflow.
type ScrapService interface {
	GetByID(ctx context.Context, scrapID id.ID) (*scrap.Scrap, error)
	SetDate(ctx context.Context, scrapID id.ID, date time.Time) (*scrap.Scrap, error)
	DoScrap(ctx context.Context, scrapID id.ID) (*scrap.Scrap, error)
}

type ScrapHandler struct {
	*BaseHandler
	service ScrapService
}

func NewScrapHandler(base *BaseHandler, service ScrapService) *ScrapHandler {
	return &ScrapHandler{BaseHandler: base, service: service}
}

// Get handles GET /scraps/:id.
func (h *ScrapHandler) Get(c *gin.Context) {
	scrapID, ok := h.ParseID(c)
	if !ok {
		return
	}
	s, err := h.service.GetByID(c.Request.Context(), scrapID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// SetDate handles POST /scraps/:id/date.
func (h *ScrapHandler) SetDate(c *gin.Context) {
	scrapID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.SetDateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	s, err := h.service.SetDate(c.Request.Context(), scrapID, *req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Transitioned(c, scrap.DocumentType, "backdate", s)
}

// Do handles POST /scraps/:id/do.
func (h *ScrapHandler) Do(c *gin.Context) {
	scrapID, ok := h.ParseID(c)
	if !ok {
		return
	}
	s, err := h.service.DoScrap(c.Request.Context(), scrapID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Transitioned(c, scrap.DocumentType, "scrap", s)
}
