package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"smeerp/internal/domain/reports"
	"smeerp/internal/infrastructure/http/v1/dto"
)

// StockLedger renders report lines.
type StockLedger interface {
	GetLines(ctx context.Context, opts reports.Options, lineID *reports.LineID) ([]reports.Line, error)
}

// ReportsHandler handles report HTTP requests.
type ReportsHandler struct {
	*BaseHandler
	ledger StockLedger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, ledger StockLedger) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		ledger:      ledger,
	}
}

// GetStockLedgerLines handles POST /reports/stock-ledger/lines.
func (h *ReportsHandler) GetStockLedgerLines(c *gin.Context) {
	var req dto.StockLedgerLinesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	lineID, err := req.ParsedLineID()
	if err != nil {
		h.Error(c, err)
		return
	}

	lines, err := h.ledger.GetLines(c.Request.Context(), req.Options, lineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.StockLedgerLinesResponse{Lines: make([]any, 0, len(lines))}
	for _, l := range lines {
		out, typ := dto.FromReportLine(l)
		resp.Lines = append(resp.Lines, out)
		if h.metrics != nil {
			h.metrics.ReportLinesServed.WithLabelValues(typ).Inc()
		}
	}
	h.OK(c, resp)
}
