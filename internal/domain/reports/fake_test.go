package reports

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
	"smeerp/internal/domain/catalogs/product"
)

// fakeMove is a done stock move line with its optional valuation layer.
type fakeMove struct {
	id        id.ID
	product   id.ID
	date      time.Time
	from, to  id.ID
	internal  bool // both ends are internal locations
	qtyDone   decimal.Decimal
	valued    bool
	layerQty  decimal.Decimal
	unitCost  decimal.Decimal
	value     decimal.Decimal
	reference string
}

// fakeStore evaluates the ledger queries in memory with the same branch
// rules the SQL uses.
type fakeStore struct {
	moves     []fakeMove
	sumCalls  int
	lineCalls []LinesQuery
}

// branches returns the rows each sub-query yields for m. Zero-quantity
// layers count in the sums but are not listed as detail rows.
func (f *fakeStore) branches(m fakeMove, locs []id.ID, forSums bool) []DetailRow {
	var rows []DetailRow
	inSel := func(l id.ID) bool { return slices.Contains(locs, l) }

	if m.valued && (forSums || !m.layerQty.IsZero()) && (len(locs) == 0 || inSel(m.from) || inSel(m.to)) {
		rows = append(rows, DetailRow{
			ID: m.id, Branch: BranchValuation, ProductID: m.product, Date: m.date,
			Debit:     clampPos(m.layerQty),
			Credit:    clampPos(m.layerQty.Neg()),
			Balance:   m.layerQty,
			Cost:      m.unitCost,
			Amount:    m.value,
			Reference: strPtr(m.reference),
		})
	}
	if len(locs) > 0 && m.internal {
		if inSel(m.to) {
			rows = append(rows, DetailRow{
				ID: m.id, Branch: BranchTransferIn, ProductID: m.product, Date: m.date,
				Debit: m.qtyDone, Balance: m.qtyDone,
			})
		}
		if inSel(m.from) {
			rows = append(rows, DetailRow{
				ID: m.id, Branch: BranchTransferOut, ProductID: m.product, Date: m.date,
				Credit: m.qtyDone, Balance: m.qtyDone.Neg(),
			})
		}
	}
	return rows
}

func (f *fakeStore) SumBuckets(_ context.Context, q SumsQuery) ([]Bucket, error) {
	f.sumCalls++
	type key struct {
		p id.ID
		k BucketKey
	}
	acc := map[key]*Bucket{}
	var order []key
	add := func(k key, r DetailRow) {
		b, ok := acc[k]
		if !ok {
			b = &Bucket{ProductID: k.p, Key: k.k}
			acc[k] = b
			order = append(order, k)
		}
		b.Debit = b.Debit.Add(r.Debit)
		b.Credit = b.Credit.Add(r.Credit)
		b.Balance = b.Balance.Add(r.Debit.Sub(r.Credit))
		b.Cost = b.Cost.Add(r.Cost)
		b.Amount = b.Amount.Add(r.Amount)
	}
	for _, m := range f.moves {
		if q.ProductID != nil && m.product != *q.ProductID {
			continue
		}
		for _, r := range f.branches(m, q.LocationIDs, true) {
			switch {
			case q.Period.Contains(m.date):
				add(key{m.product, BucketSum}, r)
			case q.Initial.Contains(m.date):
				add(key{m.product, BucketInitial}, r)
			}
		}
	}
	out := make([]Bucket, 0, len(order))
	for _, k := range order {
		out = append(out, *acc[k])
	}
	return out, nil
}

func (f *fakeStore) DetailRows(_ context.Context, q LinesQuery) ([]DetailRow, error) {
	f.lineCalls = append(f.lineCalls, q)
	var rows []DetailRow
	for _, m := range f.moves {
		if !q.AllProducts && !slices.Contains(q.ProductIDs, m.product) {
			continue
		}
		if !q.Period.Contains(m.date) {
			continue
		}
		rows = append(rows, f.branches(m, q.LocationIDs, false)...)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if c := strings.Compare(a.ID.String(), b.ID.String()); c != 0 {
			return c < 0
		}
		return a.Branch < b.Branch
	})
	if q.Offset >= len(rows) {
		return nil, nil
	}
	rows = rows[q.Offset:]
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

type fakeProducts struct {
	items []*product.Product
}

func (f *fakeProducts) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	for _, p := range f.items {
		if p.ID == productID {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", productID)
}

func (f *fakeProducts) FindByIDs(_ context.Context, ids []id.ID) ([]*product.Product, error) {
	var out []*product.Product
	for _, p := range f.items {
		if slices.Contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func clampPos(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 10, 0, 0, 0, time.UTC)
}
