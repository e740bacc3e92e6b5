package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"smeerp/internal/domain/reports"
)

// StockLedgerLinesRequest asks for report lines. Without LineID the whole
// report is rendered; with a product or load-more LineID only that
// product's detail rows are returned.
type StockLedgerLinesRequest struct {
	Options reports.Options `json:"options"`
	LineID  *string         `json:"line_id,omitempty"`
}

// ParsedLineID returns the decoded LineID, or nil when absent.
func (r *StockLedgerLinesRequest) ParsedLineID() (*reports.LineID, error) {
	if r.LineID == nil || *r.LineID == "" {
		return nil, nil
	}
	l, err := reports.ParseLineID(*r.LineID)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Report line types, sent as the "type" discriminator.
const (
	LineTypeSummary  = "summary"
	LineTypeDetail   = "detail"
	LineTypeLoadMore = "load_more"
	LineTypeTotal    = "total"
)

type lineHeader struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parent_id,omitempty"`
	Type     string  `json:"type"`
}

// SummaryLineResponse is a product line.
type SummaryLineResponse struct {
	lineHeader
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Balance        decimal.Decimal `json:"balance"`
	InitialAmount  decimal.Decimal `json:"initial_amount"`
	Amount         decimal.Decimal `json:"amount"`
	AmountBalance  decimal.Decimal `json:"amount_balance"`
	Unfoldable     bool            `json:"unfoldable"`
	Unfolded       bool            `json:"unfolded"`
}

// DetailLineResponse is a stock move line.
type DetailLineResponse struct {
	lineHeader
	Date          time.Time       `json:"date"`
	DateExpected  *time.Time      `json:"date_expected,omitempty"`
	PartnerName   string          `json:"partner_name,omitempty"`
	Reference     string          `json:"reference"`
	Origin        string          `json:"origin,omitempty"`
	SourceName    string          `json:"source_name"`
	DestName      string          `json:"dest_name"`
	UomName       string          `json:"uom_name"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Cost          decimal.Decimal `json:"cost"`
	AmountBefore  decimal.Decimal `json:"amount_before"`
	Amount        decimal.Decimal `json:"amount"`
	AmountAfter   decimal.Decimal `json:"amount_after"`
}

// LoadMoreLineResponse carries the cursor for the next page of details.
type LoadMoreLineResponse struct {
	lineHeader
	Offset         int             `json:"offset"`
	Remaining      int             `json:"remaining"`
	Progress       decimal.Decimal `json:"progress"`
	AmountProgress decimal.Decimal `json:"amount_progress"`
}

// TotalLineResponse is the grand total.
type TotalLineResponse struct {
	lineHeader
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Balance        decimal.Decimal `json:"balance"`
	InitialAmount  decimal.Decimal `json:"initial_amount"`
	Amount         decimal.Decimal `json:"amount"`
	AmountBalance  decimal.Decimal `json:"amount_balance"`
}

// StockLedgerLinesResponse is the ordered line list.
type StockLedgerLinesResponse struct {
	Lines []any `json:"lines"`
}

func header(l reports.Line, typ string) lineHeader {
	h := lineHeader{ID: l.LineID().String(), Type: typ}
	if p := l.ParentID(); p != nil {
		s := p.String()
		h.ParentID = &s
	}
	return h
}

// FromReportLine converts a domain line and reports its type.
func FromReportLine(l reports.Line) (any, string) {
	switch v := l.(type) {
	case *reports.SummaryLine:
		return SummaryLineResponse{
			lineHeader:     header(v, LineTypeSummary),
			Name:           v.Name,
			InitialBalance: v.InitialBalance,
			Debit:          v.Debit,
			Credit:         v.Credit,
			Balance:        v.Balance,
			InitialAmount:  v.InitialAmount,
			Amount:         v.Amount,
			AmountBalance:  v.AmountBalance,
			Unfoldable:     v.Unfoldable,
			Unfolded:       v.Unfolded,
		}, LineTypeSummary
	case *reports.DetailLine:
		return DetailLineResponse{
			lineHeader:    header(v, LineTypeDetail),
			Date:          v.Date,
			DateExpected:  v.DateExpected,
			PartnerName:   v.PartnerName,
			Reference:     v.Reference,
			Origin:        v.Origin,
			SourceName:    v.SourceName,
			DestName:      v.DestName,
			UomName:       v.UomName,
			BalanceBefore: v.BalanceBefore,
			Debit:         v.Debit,
			Credit:        v.Credit,
			BalanceAfter:  v.BalanceAfter,
			Cost:          v.Cost,
			AmountBefore:  v.AmountBefore,
			Amount:        v.Amount,
			AmountAfter:   v.AmountAfter,
		}, LineTypeDetail
	case *reports.LoadMoreLine:
		return LoadMoreLineResponse{
			lineHeader:     header(v, LineTypeLoadMore),
			Offset:         v.Offset,
			Remaining:      v.Remaining,
			Progress:       v.Progress,
			AmountProgress: v.AmountProgress,
		}, LineTypeLoadMore
	case *reports.TotalLine:
		return TotalLineResponse{
			lineHeader:     header(v, LineTypeTotal),
			InitialBalance: v.InitialBalance,
			Debit:          v.Debit,
			Credit:         v.Credit,
			Balance:        v.Balance,
			InitialAmount:  v.InitialAmount,
			Amount:         v.Amount,
			AmountBalance:  v.AmountBalance,
		}, LineTypeTotal
	default:
		panic(fmt.Sprintf("dto: unknown report line %T", l))
	}
}
