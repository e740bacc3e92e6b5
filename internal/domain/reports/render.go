package reports

import (
	"github.com/shopspring/decimal"
)

// running is the accumulator threaded through a product's detail rows.
type running struct {
	Balance decimal.Decimal
	Amount  decimal.Decimal
}

// foldRow renders row against acc and returns the advanced accumulator.
func foldRow(acc running, row DetailRow, parent LineID) (running, *DetailLine) {
	next := running{
		Balance: acc.Balance.Add(row.Balance),
		Amount:  acc.Amount.Add(row.Amount),
	}
	line := &DetailLine{
		ID:            LineID{Kind: row.Branch.lineKind(), ID: row.ID},
		Parent:        parent,
		Date:          row.Date,
		DateExpected:  row.DateExpected,
		PartnerName:   deref(row.PartnerName),
		Reference:     formatReference(deref(row.MoveName), deref(row.Reference)),
		Origin:        deref(row.Origin),
		SourceName:    deref(row.SourceName),
		DestName:      deref(row.DestName),
		UomName:       deref(row.UomName),
		BalanceBefore: acc.Balance,
		Debit:         row.Debit,
		Credit:        row.Credit,
		BalanceAfter:  next.Balance,
		Cost:          row.Cost,
		AmountBefore:  acc.Amount,
		Amount:        row.Amount,
		AmountAfter:   next.Amount,
	}
	return next, line
}

// renderRows folds up to limit rows (all when limit <= 0).
func renderRows(acc running, rows []DetailRow, parent LineID, limit int) ([]Line, running) {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		var line *DetailLine
		acc, line = foldRow(acc, row, parent)
		lines = append(lines, line)
	}
	return lines, acc
}

// summarize computes the product line values.
func summarize(r ProductResult, opts *Options, isZero func(decimal.Decimal) bool) *SummaryLine {
	line := &SummaryLine{
		ID:             ProductLineID(r.Product.ID),
		Name:           truncate(r.Product.DisplayName(), 128),
		InitialBalance: decimal.Zero,
		Debit:          decimal.Zero,
		Credit:         decimal.Zero,
		InitialAmount:  decimal.Zero,
		Amount:         decimal.Zero,
	}
	sumBalance := decimal.Zero
	if b := r.Data.Initial; b != nil {
		line.InitialBalance = b.Balance
		line.InitialAmount = b.Amount
	}
	if b := r.Data.Sum; b != nil {
		line.Debit = b.Debit
		line.Credit = b.Credit
		sumBalance = b.Balance
		line.Amount = b.Amount
	}
	line.Balance = line.InitialBalance.Add(sumBalance)
	line.AmountBalance = line.InitialAmount.Add(line.Amount)
	line.Unfoldable = !isZero(line.Debit) || !isZero(line.Credit)
	line.Unfolded = opts.IsUnfolded(r.Product.ID)
	return line
}

func (b RowBranch) lineKind() LineKind {
	switch b {
	case BranchTransferIn:
		return KindTransferIn
	case BranchTransferOut:
		return KindTransferOut
	default:
		return KindMove
	}
}

// formatReference joins the document reference and the move name.
func formatReference(moveName, reference string) string {
	switch {
	case reference == "":
		return moveName
	case moveName == "" || moveName == reference:
		return reference
	default:
		return reference + " - " + moveName
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
