package reports

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
	"smeerp/internal/core/tx"
	"smeerp/internal/domain/catalogs/currency"
	"smeerp/internal/domain/catalogs/product"
)

var (
	usd         = currency.New("USD", 2)
	locStock    = id.New()
	locShelf    = id.New()
	locSupplier = id.New()
	locCustomer = id.New()
)

func newProduct(code, name string) *product.Product {
	return &product.Product{ID: id.New(), DefaultCode: &code, Name: name, Active: true}
}

func receipt(p *product.Product, d int, qty, cost string) fakeMove {
	q := dec(qty)
	return fakeMove{
		id: id.New(), product: p.ID, date: day(d),
		from: locSupplier, to: locStock,
		qtyDone: q, valued: true, layerQty: q,
		unitCost: dec(cost), value: q.Mul(dec(cost)),
		reference: "WH/IN/" + qty,
	}
}

func delivery(p *product.Product, d int, qty, cost string) fakeMove {
	q := dec(qty)
	return fakeMove{
		id: id.New(), product: p.ID, date: day(d),
		from: locStock, to: locCustomer,
		qtyDone: q, valued: true, layerQty: q.Neg(),
		unitCost: dec(cost), value: q.Mul(dec(cost)).Neg(),
	}
}

func transfer(p *product.Product, d int, qty string, from, to id.ID) fakeMove {
	return fakeMove{
		id: id.New(), product: p.ID, date: day(d),
		from: from, to: to, internal: true,
		qtyDone: dec(qty),
	}
}

func march(from, to int) Options {
	return Options{Date: DateFilter{DateFrom: day(from), DateTo: day(to), StrictRange: true}}
}

func newTestService(store *fakeStore, pageSize int, products ...*product.Product) *Service {
	return NewService(store, &fakeProducts{items: products}, usd, pageSize, &tx.MockManager{})
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !dec(want).Equal(got) {
		assert.Fail(t, fmt.Sprintf("want %s, got %s", want, got), msgAndArgs...)
	}
}

func splitLines(lines []Line) (summaries []*SummaryLine, details []*DetailLine, loadMores []*LoadMoreLine, totals []*TotalLine) {
	for _, l := range lines {
		switch v := l.(type) {
		case *SummaryLine:
			summaries = append(summaries, v)
		case *DetailLine:
			details = append(details, v)
		case *LoadMoreLine:
			loadMores = append(loadMores, v)
		case *TotalLine:
			totals = append(totals, v)
		}
	}
	return
}

func TestGetLines_SingleReceipt(t *testing.T) {
	p := newProduct("P1", "Widget")
	store := &fakeStore{moves: []fakeMove{receipt(p, 10, "10", "2")}}
	svc := newTestService(store, 80, p)

	lines, err := svc.GetLines(context.Background(), march(1, 31), nil)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	summary := lines[0].(*SummaryLine)
	assert.Equal(t, ProductLineID(p.ID), summary.ID)
	assert.Equal(t, "[P1] Widget", summary.Name)
	assertDec(t, "0", summary.InitialBalance)
	assertDec(t, "10", summary.Debit)
	assertDec(t, "0", summary.Credit)
	assertDec(t, "10", summary.Balance)
	assertDec(t, "0", summary.InitialAmount)
	assertDec(t, "20", summary.Amount)
	assertDec(t, "20", summary.AmountBalance)
	assert.True(t, summary.Unfoldable)
	assert.False(t, summary.Unfolded)
	assert.Empty(t, store.lineCalls, "folded report does not fetch detail rows")

	_, ok := lines[1].(*TotalLine)
	assert.True(t, ok)

	opts := march(1, 31)
	opts.UnfoldedLines = []LineID{ProductLineID(p.ID)}
	lines, err = svc.GetLines(context.Background(), opts, nil)
	require.NoError(t, err)

	summaries, details, loadMores, totals := splitLines(lines)
	require.Len(t, summaries, 1)
	require.Len(t, details, 1)
	assert.Empty(t, loadMores)
	assert.Len(t, totals, 1)

	assert.True(t, summaries[0].Unfolded)
	d := details[0]
	assert.Equal(t, ProductLineID(p.ID), d.Parent)
	assert.Equal(t, KindMove, d.ID.Kind)
	assert.Equal(t, "WH/IN/10", d.Reference)
	assertDec(t, "0", d.BalanceBefore)
	assertDec(t, "10", d.BalanceAfter)
	assertDec(t, "0", d.AmountBefore)
	assertDec(t, "20", d.AmountAfter)
	assertDec(t, "2", d.Cost)
}

func TestGetLines_InternalTransferCorrection(t *testing.T) {
	p := newProduct("P1", "Widget")
	store := &fakeStore{moves: []fakeMove{
		receipt(p, 5, "10", "2"),
		transfer(p, 10, "5", locStock, locStock),
	}}
	svc := newTestService(store, 80, p)

	t.Run("without location filter transfers are invisible", func(t *testing.T) {
		lines, err := svc.GetLines(context.Background(), march(1, 31), nil)
		require.NoError(t, err)
		summary := lines[0].(*SummaryLine)
		assertDec(t, "10", summary.Debit)
		assertDec(t, "0", summary.Credit)
	})

	t.Run("selected location counts both legs", func(t *testing.T) {
		opts := march(1, 31)
		opts.Locations = []LocationOption{{ID: locStock, Selected: true}, {ID: locShelf}}
		opts.UnfoldAll = true

		lines, err := svc.GetLines(context.Background(), opts, nil)
		require.NoError(t, err)

		summaries, details, _, _ := splitLines(lines)
		require.Len(t, summaries, 1)
		s := summaries[0]
		assertDec(t, "15", s.Debit)
		assertDec(t, "5", s.Credit)
		assertDec(t, "10", s.Balance)
		assertDec(t, "20", s.Amount, "transfer legs carry no value")

		require.Len(t, details, 3)
		assert.Equal(t, KindMove, details[0].ID.Kind)
		assert.Equal(t, KindTransferIn, details[1].ID.Kind)
		assert.Equal(t, KindTransferOut, details[2].ID.Kind)
		assertDec(t, "15", details[1].BalanceAfter)
		assertDec(t, "10", details[2].BalanceAfter)
		assertDec(t, "0", details[1].Amount)
		assertDec(t, "0", details[2].Cost)
	})

	t.Run("location filter with nothing selected behaves as no filter", func(t *testing.T) {
		opts := march(1, 31)
		opts.Locations = []LocationOption{{ID: locStock}, {ID: locShelf}}
		opts.UnfoldAll = true

		lines, err := svc.GetLines(context.Background(), opts, nil)
		require.NoError(t, err)
		summaries, details, _, _ := splitLines(lines)
		assertDec(t, "10", summaries[0].Debit)
		assertDec(t, "0", summaries[0].Credit)
		assert.Len(t, details, 1)
	})
}

func TestGetLines_InactiveProductWithoutActivityIsOmitted(t *testing.T) {
	active := newProduct("A", "Active")
	idle := newProduct("B", "Idle")
	store := &fakeStore{moves: []fakeMove{
		receipt(active, 12, "3", "1"),
		// idle nets to zero before the period and has no movement inside it
		receipt(idle, 1, "4", "1"),
		delivery(idle, 2, "4", "1"),
	}}
	svc := newTestService(store, 80, active, idle)

	lines, err := svc.GetLines(context.Background(), march(10, 20), nil)
	require.NoError(t, err)

	summaries, _, _, totals := splitLines(lines)
	require.Len(t, summaries, 1)
	assert.Equal(t, ProductLineID(active.ID), summaries[0].ID)
	assert.Len(t, totals, 1)
}

func TestGetLines_InitialBalanceOnlyProductIsListed(t *testing.T) {
	p := newProduct("P", "Old stock")
	store := &fakeStore{moves: []fakeMove{receipt(p, 1, "7", "3")}}
	svc := newTestService(store, 80, p)

	lines, err := svc.GetLines(context.Background(), march(10, 20), nil)
	require.NoError(t, err)

	s := lines[0].(*SummaryLine)
	assertDec(t, "7", s.InitialBalance)
	assertDec(t, "7", s.Balance)
	assertDec(t, "21", s.InitialAmount)
	assertDec(t, "21", s.AmountBalance)
	assert.False(t, s.Unfoldable)
}

func TestGetLines_PartitionAcrossDateFrom(t *testing.T) {
	p := newProduct("P", "Widget")
	var moves []fakeMove
	total := decimal.Zero
	for d := 1; d <= 20; d++ {
		if d%3 == 0 {
			moves = append(moves, delivery(p, d, "2", "1"))
			total = total.Sub(dec("2"))
		} else {
			moves = append(moves, receipt(p, d, "5", "1"))
			total = total.Add(dec("5"))
		}
	}
	store := &fakeStore{moves: moves}
	svc := newTestService(store, 80, p)

	for from := 2; from <= 20; from++ {
		lines, err := svc.GetLines(context.Background(), march(from, 25), nil)
		require.NoError(t, err)
		s := lines[0].(*SummaryLine)

		before := decimal.Zero
		for _, m := range moves {
			if m.date.Before(startOfDay(day(from))) {
				before = before.Add(m.layerQty)
			}
		}
		assertDec(t, before.String(), s.InitialBalance, "date_from=%d", from)
		assertDec(t, total.String(), s.Balance, "date_from=%d", from)
		assertDec(t, s.Debit.Sub(s.Credit).String(), s.Balance.Sub(s.InitialBalance), "date_from=%d", from)
	}
}

func TestGetLines_UnfoldAllRoundTrip(t *testing.T) {
	a := newProduct("A", "Alpha")
	b := newProduct("B", "Beta")
	store := &fakeStore{moves: []fakeMove{
		receipt(a, 1, "20", "1.5"),
		receipt(a, 11, "5", "1.5"),
		delivery(a, 12, "8", "1.5"),
		receipt(b, 13, "2", "10"),
		delivery(a, 14, "1", "1.5"),
		delivery(b, 15, "1", "10"),
	}}
	svc := newTestService(store, 80, a, b)

	opts := march(10, 20)
	opts.UnfoldAll = true
	lines, err := svc.GetLines(context.Background(), opts, nil)
	require.NoError(t, err)

	var current *SummaryLine
	last := map[LineID]*DetailLine{}
	summaries := map[LineID]*SummaryLine{}
	for _, l := range lines {
		switch v := l.(type) {
		case *SummaryLine:
			current = v
			summaries[v.ID] = v
		case *DetailLine:
			require.NotNil(t, current)
			assert.Equal(t, current.ID, v.Parent)
			last[v.Parent] = v
		}
	}
	require.Len(t, summaries, 2)
	for lid, s := range summaries {
		d := last[lid]
		require.NotNil(t, d, lid.String())
		assertDec(t, s.Balance.String(), d.BalanceAfter, lid.String())
		assertDec(t, s.AmountBalance.String(), d.AmountAfter, lid.String())
	}
	assertDec(t, "20", summaries[ProductLineID(a.ID)].InitialBalance)
	assertDec(t, "16", summaries[ProductLineID(a.ID)].Balance)
}

func TestGetLines_PaginationIdempotence(t *testing.T) {
	p := newProduct("P", "Widget")
	moves := []fakeMove{receipt(p, 1, "100", "1")}
	for d := 10; d <= 16; d++ {
		moves = append(moves, delivery(p, d, "3", "1"))
	}
	store := &fakeStore{moves: moves}
	opts := march(5, 31)
	lineID := ProductLineID(p.ID)

	collect := func(pageSize int) ([]LineID, []string) {
		svc := newTestService(store, pageSize, p)
		lines, err := svc.GetLines(context.Background(), opts, &lineID)
		require.NoError(t, err)

		var ids []LineID
		var balances []string
		for {
			_, details, loadMores, totals := splitLines(lines)
			assert.Empty(t, totals, "expanding one line omits the total")
			for _, d := range details {
				ids = append(ids, d.ID)
				balances = append(balances, d.BalanceAfter.String())
			}
			if len(loadMores) == 0 {
				return ids, balances
			}
			lm := loadMores[0]
			assert.Equal(t, lineID, lm.Parent)

			next := opts
			next.LinesOffset = lm.Offset
			next.LinesRemaining = lm.Remaining
			next.LinesProgress = lm.Progress
			next.LineAmountProgress = lm.AmountProgress
			lmID := lm.ID
			lines, err = svc.GetLines(context.Background(), next, &lmID)
			require.NoError(t, err)
		}
	}

	wantIDs, wantBalances := collect(100)
	require.Len(t, wantIDs, 7)
	assert.Equal(t, "79", wantBalances[len(wantBalances)-1])

	for pageSize := 1; pageSize <= 8; pageSize++ {
		ids, balances := collect(pageSize)
		assert.Equal(t, wantIDs, ids, "page size %d", pageSize)
		assert.Equal(t, wantBalances, balances, "page size %d", pageSize)
	}
}

func TestGetLines_FirstPageLoadMoreCursor(t *testing.T) {
	p := newProduct("P", "Widget")
	var moves []fakeMove
	for d := 1; d <= 5; d++ {
		moves = append(moves, receipt(p, d, "1", "2"))
	}
	svc := newTestService(&fakeStore{moves: moves}, 2, p)

	opts := march(1, 31)
	opts.UnfoldedLines = []LineID{ProductLineID(p.ID)}
	lines, err := svc.GetLines(context.Background(), opts, nil)
	require.NoError(t, err)

	_, details, loadMores, _ := splitLines(lines)
	require.Len(t, details, 2)
	require.Len(t, loadMores, 1)
	lm := loadMores[0]
	assert.Equal(t, LoadMoreLineID(p.ID), lm.ID)
	assert.Equal(t, 2, lm.Offset)
	assert.Equal(t, 3, lm.Remaining)
	assertDec(t, "2", lm.Progress)
	assertDec(t, "4", lm.AmountProgress)
}

func TestGetLines_PrintModeRendersEveryRow(t *testing.T) {
	p := newProduct("P", "Widget")
	var moves []fakeMove
	for d := 1; d <= 5; d++ {
		moves = append(moves, receipt(p, d, "1", "2"))
	}
	svc := newTestService(&fakeStore{moves: moves}, 2, p)

	opts := march(1, 31)
	opts.PrintMode = true
	lines, err := svc.GetLines(context.Background(), opts, nil)
	require.NoError(t, err)

	summaries, details, loadMores, _ := splitLines(lines)
	assert.True(t, summaries[0].Unfolded)
	assert.Len(t, details, 5)
	assert.Empty(t, loadMores)
}

func TestGetLines_ExpandedProductWithoutData(t *testing.T) {
	p := newProduct("P", "Empty")
	svc := newTestService(&fakeStore{}, 80, p)

	lineID := ProductLineID(p.ID)
	lines, err := svc.GetLines(context.Background(), march(1, 31), &lineID)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	s := lines[0].(*SummaryLine)
	assertDec(t, "0", s.Balance)
	assertDec(t, "0", s.AmountBalance)
	assert.False(t, s.Unfoldable)
}

func TestGetLines_TotalLine(t *testing.T) {
	a := newProduct("A", "Alpha")
	b := newProduct("B", "Beta")
	store := &fakeStore{moves: []fakeMove{
		receipt(a, 1, "4", "1"),
		receipt(a, 12, "6", "1"),
		receipt(b, 13, "2", "5"),
		delivery(b, 14, "1", "5"),
	}}
	svc := newTestService(store, 80, a, b)

	lines, err := svc.GetLines(context.Background(), march(10, 20), nil)
	require.NoError(t, err)

	total, ok := lines[len(lines)-1].(*TotalLine)
	require.True(t, ok)
	assertDec(t, "4", total.InitialBalance)
	assertDec(t, "8", total.Debit)
	assertDec(t, "1", total.Credit)
	assertDec(t, "11", total.Balance)
	assertDec(t, "4", total.InitialAmount)
	assertDec(t, "11", total.Amount)
	assertDec(t, "15", total.AmountBalance)
}

func TestGetLines_ProductsFollowStoreOrder(t *testing.T) {
	a := newProduct("A", "Alpha")
	b := newProduct("B", "Beta")
	store := &fakeStore{moves: []fakeMove{
		receipt(b, 12, "1", "1"),
		receipt(a, 13, "1", "1"),
	}}
	svc := newTestService(store, 80, a, b)

	lines, err := svc.GetLines(context.Background(), march(10, 20), nil)
	require.NoError(t, err)
	summaries, _, _, _ := splitLines(lines)
	require.Len(t, summaries, 2)
	assert.Equal(t, ProductLineID(a.ID), summaries[0].ID)
	assert.Equal(t, ProductLineID(b.ID), summaries[1].ID)
}

func TestGetLines_InputErrors(t *testing.T) {
	svc := newTestService(&fakeStore{}, 80)

	_, err := svc.GetLines(context.Background(), Options{}, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidDateRange))

	_, err = svc.GetLines(context.Background(), march(20, 10), nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidDateRange))

	opts := march(1, 31)
	opts.LinesOffset = 80
	_, err = svc.GetLines(context.Background(), opts, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidLineID))

	total := TotalLineID
	_, err = svc.GetLines(context.Background(), march(1, 31), &total)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidLineID))
}
