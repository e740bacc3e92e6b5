// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"smeerp/internal/domain/reports"
	"smeerp/internal/infrastructure/storage/postgres"
)

// StockLedgerRepo implements reports.Repository.
// TxManager is obtained from context so reads join an open transaction.
type StockLedgerRepo struct{}

var _ reports.Repository = (*StockLedgerRepo)(nil)

// NewStockLedgerRepo creates a new stock ledger repository.
func NewStockLedgerRepo() *StockLedgerRepo {
	return &StockLedgerRepo{}
}

// SumBuckets returns sum and initial_balance buckets per product.
func (r *StockLedgerRepo) SumBuckets(ctx context.Context, q reports.SumsQuery) ([]reports.Bucket, error) {
	sql, args, err := buildSumsQuery(q)
	if err != nil {
		return nil, fmt.Errorf("build sums query: %w", err)
	}

	var items []reports.Bucket
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger sums: %w", err)
	}
	return items, nil
}

// DetailRows returns the period's detail rows ordered by date.
func (r *StockLedgerRepo) DetailRows(ctx context.Context, q reports.LinesQuery) ([]reports.DetailRow, error) {
	sql, args, err := buildLinesQuery(q)
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}

	var items []reports.DetailRow
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger lines: %w", err)
	}
	return items, nil
}
