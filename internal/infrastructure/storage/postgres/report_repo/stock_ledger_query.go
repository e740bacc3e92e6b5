package report_repo

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"smeerp/internal/core/id"
	"smeerp/internal/domain/reports"
)

// ledgerBranch is one UNION ALL member of a ledger query: valuation layers,
// or one leg of the internal transfer correction.
type ledgerBranch struct {
	kind   reports.RowBranch
	window reports.DateWindow

	// key is the bucket name; empty for detail rows.
	key reports.BucketKey

	locations []id.ID
	products  []id.ID
}

const (
	valuationSumColumns = "CASE WHEN svl.quantity >= 0 THEN svl.quantity ELSE 0 END AS debit, " +
		"CASE WHEN svl.quantity <= 0 THEN -svl.quantity ELSE 0 END AS credit"

	detailColumns = "sml.id AS id, sml.product_id AS product_id, sml.date AS date, " +
		"sm.origin AS origin, sm.date_expected AS date_expected, uom.name AS uom_name, " +
		"sml.reference AS reference, sm.name AS move_name, partner.name AS partner_name, " +
		"src.complete_name AS source_name, dst.complete_name AS dest_name"
)

func (b ledgerBranch) columns() []string {
	var cols []string
	if b.key != "" {
		cols = append(cols, "sml.product_id AS product_id", fmt.Sprintf("'%s' AS key", b.key))
	} else {
		cols = append(cols, detailColumns, fmt.Sprintf("%d AS branch", b.kind))
	}

	switch b.kind {
	case reports.BranchTransferIn:
		cols = append(cols, "sml.qty_done AS debit", "0 AS credit")
		if b.key == "" {
			cols = append(cols, "sml.qty_done AS balance")
		}
		cols = append(cols, "0 AS cost", "0 AS amount")
	case reports.BranchTransferOut:
		cols = append(cols, "0 AS debit", "sml.qty_done AS credit")
		if b.key == "" {
			cols = append(cols, "-sml.qty_done AS balance")
		}
		cols = append(cols, "0 AS cost", "0 AS amount")
	default:
		cols = append(cols, valuationSumColumns)
		if b.key == "" {
			cols = append(cols, "svl.quantity AS balance")
		}
		cols = append(cols, "svl.unit_cost AS cost", "svl.value AS amount")
	}
	return cols
}

// toSelect renders the branch with '?' placeholders; the outer query
// renumbers them.
func (b ledgerBranch) toSelect() squirrel.SelectBuilder {
	q := squirrel.Select(b.columns()...).
		From("stock_move_line sml").
		Join("stock_move sm ON sm.id = sml.move_id").
		LeftJoin("stock_location src ON src.id = sml.location_id").
		LeftJoin("stock_location dst ON dst.id = sml.location_dest_id").
		Where(squirrel.Eq{"sml.state": "done"})

	if b.key == "" {
		q = q.
			LeftJoin("uom ON uom.id = sm.uom_id").
			LeftJoin("stock_picking picking ON picking.id = sm.picking_id").
			LeftJoin("partner ON partner.id = picking.partner_id")
	}

	switch b.kind {
	case reports.BranchValuation:
		q = q.Join("stock_valuation_layer svl ON svl.stock_move_id = sm.id")
		if b.key == "" {
			q = q.Where(squirrel.NotEq{"svl.quantity": 0})
		}
		if len(b.locations) > 0 {
			q = q.Where(squirrel.Or{
				squirrel.Eq{"sml.location_id": b.locations},
				squirrel.Eq{"sml.location_dest_id": b.locations},
			})
		}
	case reports.BranchTransferIn:
		q = q.Where(squirrel.Eq{"src.usage": "internal", "dst.usage": "internal"}).
			Where(squirrel.Eq{"sml.location_dest_id": b.locations})
	case reports.BranchTransferOut:
		q = q.Where(squirrel.Eq{"src.usage": "internal", "dst.usage": "internal"}).
			Where(squirrel.Eq{"sml.location_id": b.locations})
	}

	if from := b.window.LowerInclusive(); from != nil {
		q = q.Where(squirrel.GtOrEq{"sml.date": *from})
	}
	q = q.Where(squirrel.Lt{"sml.date": b.window.UpperExclusive()})

	if len(b.products) > 0 {
		q = q.Where(squirrel.Eq{"sml.product_id": b.products})
	}
	return q
}

// branchesFor returns the valuation branch and, when locations are selected,
// both transfer correction branches.
func branchesFor(template ledgerBranch) []ledgerBranch {
	kinds := []reports.RowBranch{reports.BranchValuation}
	if len(template.locations) > 0 {
		kinds = append(kinds, reports.BranchTransferIn, reports.BranchTransferOut)
	}
	out := make([]ledgerBranch, 0, len(kinds))
	for _, k := range kinds {
		b := template
		b.kind = k
		out = append(out, b)
	}
	return out
}

// unionAll chains branches into one select. Only the first member keeps
// builder form so the outer FromSelect can renumber every placeholder.
func unionAll(branches []ledgerBranch) (squirrel.SelectBuilder, error) {
	first := branches[0].toSelect()
	if len(branches) == 1 {
		return first, nil
	}

	parts := make([]string, 0, len(branches)-1)
	var args []any
	for _, b := range branches[1:] {
		sql, branchArgs, err := b.toSelect().ToSql()
		if err != nil {
			return squirrel.SelectBuilder{}, fmt.Errorf("build ledger branch: %w", err)
		}
		parts = append(parts, sql)
		args = append(args, branchArgs...)
	}
	return first.Suffix("UNION ALL "+strings.Join(parts, " UNION ALL "), args...), nil
}

// buildSumsQuery aggregates the period and initial windows into buckets
// keyed by product and bucket name.
func buildSumsQuery(q reports.SumsQuery) (string, []any, error) {
	var products []id.ID
	if q.ProductID != nil {
		products = []id.ID{*q.ProductID}
	}

	branches := branchesFor(ledgerBranch{
		key: reports.BucketSum, window: q.Period, locations: q.LocationIDs, products: products,
	})
	branches = append(branches, branchesFor(ledgerBranch{
		key: reports.BucketInitial, window: q.Initial, locations: q.LocationIDs, products: products,
	})...)

	union, err := unionAll(branches)
	if err != nil {
		return "", nil, err
	}

	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(
			"a.product_id",
			"a.key",
			"SUM(a.debit) AS debit",
			"SUM(a.credit) AS credit",
			"SUM(a.debit) - SUM(a.credit) AS balance",
			"SUM(a.cost) AS cost",
			"SUM(a.amount) AS amount",
		).
		FromSelect(union, "a").
		GroupBy("a.product_id", "a.key").
		ToSql()
}

// buildLinesQuery lists detail rows of the period ordered by date.
func buildLinesQuery(q reports.LinesQuery) (string, []any, error) {
	template := ledgerBranch{window: q.Period, locations: q.LocationIDs}
	if !q.AllProducts {
		if len(q.ProductIDs) == 0 {
			return "", nil, fmt.Errorf("lines query needs products or all products")
		}
		template.products = q.ProductIDs
	}

	union, err := unionAll(branchesFor(template))
	if err != nil {
		return "", nil, err
	}

	sel := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("a.*").
		FromSelect(union, "a").
		OrderBy("a.date", "a.id", "a.branch")
	if q.Offset > 0 {
		sel = sel.Offset(uint64(q.Offset))
	}
	if q.Limit > 0 {
		sel = sel.Limit(uint64(q.Limit))
	}
	return sel.ToSql()
}
