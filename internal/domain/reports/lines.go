package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line is one report line: *SummaryLine, *DetailLine, *LoadMoreLine or *TotalLine.
type Line interface {
	LineID() LineID
	// ParentID is nil for top-level lines.
	ParentID() *LineID
	isLine()
}

// SummaryLine is the per-product line.
type SummaryLine struct {
	ID   LineID
	Name string

	InitialBalance decimal.Decimal
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	Balance        decimal.Decimal
	InitialAmount  decimal.Decimal
	Amount         decimal.Decimal
	AmountBalance  decimal.Decimal

	Unfoldable bool
	Unfolded   bool
}

// DetailLine is one stock move line under a product.
type DetailLine struct {
	ID     LineID
	Parent LineID

	Date         time.Time
	DateExpected *time.Time
	PartnerName  string
	Reference    string
	Origin       string
	SourceName   string
	DestName     string
	UomName      string

	// BalanceBefore and BalanceAfter are the running quantity around this row.
	BalanceBefore decimal.Decimal
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	BalanceAfter  decimal.Decimal
	Cost          decimal.Decimal
	AmountBefore  decimal.Decimal
	Amount        decimal.Decimal
	AmountAfter   decimal.Decimal
}

// LoadMoreLine carries the cursor to resume a product's detail rows.
type LoadMoreLine struct {
	ID     LineID
	Parent LineID

	Offset         int
	Remaining      int
	Progress       decimal.Decimal
	AmountProgress decimal.Decimal
}

// TotalLine sums all summary lines.
type TotalLine struct {
	InitialBalance decimal.Decimal
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	Balance        decimal.Decimal
	InitialAmount  decimal.Decimal
	Amount         decimal.Decimal
	AmountBalance  decimal.Decimal
}

func (l *SummaryLine) LineID() LineID     { return l.ID }
func (l *SummaryLine) ParentID() *LineID  { return nil }
func (l *DetailLine) LineID() LineID      { return l.ID }
func (l *DetailLine) ParentID() *LineID   { return &l.Parent }
func (l *LoadMoreLine) LineID() LineID    { return l.ID }
func (l *LoadMoreLine) ParentID() *LineID { return &l.Parent }
func (l *TotalLine) LineID() LineID       { return TotalLineID }
func (l *TotalLine) ParentID() *LineID    { return nil }

func (*SummaryLine) isLine()  {}
func (*DetailLine) isLine()   {}
func (*LoadMoreLine) isLine() {}
func (*TotalLine) isLine()    {}

func (t *TotalLine) add(s *SummaryLine) {
	t.InitialBalance = t.InitialBalance.Add(s.InitialBalance)
	t.Debit = t.Debit.Add(s.Debit)
	t.Credit = t.Credit.Add(s.Credit)
	t.Balance = t.Balance.Add(s.Balance)
	t.InitialAmount = t.InitialAmount.Add(s.InitialAmount)
	t.Amount = t.Amount.Add(s.Amount)
	t.AmountBalance = t.AmountBalance.Add(s.AmountBalance)
}
