// Package register_repo provides PostgreSQL storage for stock moves and valuation layers.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
	"smeerp/internal/domain/registers/stock"
	"smeerp/internal/infrastructure/storage/postgres"
)

var (
	moveColumns = []string{
		"id", "name", "reference", "origin", "product_id", "location_id", "location_dest_id",
		"uom_id", "product_uom_qty", "date", "state", "recorder_id", "recorder_type",
	}
	moveLineColumns = []string{
		"id", "move_id", "product_id", "location_id", "location_dest_id",
		"qty_done", "date", "state", "reference",
	}
	layerColumns = postgres.ExtractDBColumns[entity.ValuationLayer]()
)

// StockRepo implements stock.Repository.
type StockRepo struct{}

// NewStockRepo creates a new stock register repository.
func NewStockRepo() *StockRepo {
	return &StockRepo{}
}

// CreateMoves copies the moves and one line per move. Requires a transaction.
func (r *StockRepo) CreateMoves(ctx context.Context, moves []entity.StockMove) error {
	if len(moves) == 0 {
		return nil
	}

	if _, err := postgres.CopyRows(ctx, "stock_move", moveColumns, moves, func(m entity.StockMove) []any {
		return []any{
			m.ID, m.Name, m.Reference, m.Origin, m.ProductID, m.LocationID, m.LocationDestID,
			m.UomID, m.Quantity, m.Date, m.State, m.RecorderID, m.RecorderType,
		}
	}); err != nil {
		return err
	}
	_, err := postgres.CopyRows(ctx, "stock_move_line", moveLineColumns, moves, func(m entity.StockMove) []any {
		return []any{
			id.New(), m.ID, m.ProductID, m.LocationID, m.LocationDestID,
			m.Quantity, m.Date, m.State, m.Reference,
		}
	})
	return err
}

// CreateValuationLayers copies layers in. Requires a transaction.
func (r *StockRepo) CreateValuationLayers(ctx context.Context, layers []entity.ValuationLayer) error {
	if len(layers) == 0 {
		return nil
	}
	_, err := postgres.CopyRows(ctx, "stock_valuation_layer", layerColumns, layers, func(l entity.ValuationLayer) []any {
		return []any{l.ID, l.StockMoveID, l.ProductID, l.Quantity, l.UnitCost, l.Value, l.CreatedAt}
	})
	return err
}

const (
	qtyIn  = "SUM(CASE WHEN location_dest_id = ? THEN qty_done ELSE 0 END)"
	qtyOut = "SUM(CASE WHEN location_id = ? THEN qty_done ELSE 0 END)"
)

func balancesQuery(locationID id.ID, at time.Time) (string, []any, error) {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("product_id").
		Column(squirrel.Expr(qtyIn+" - "+qtyOut+" AS quantity", locationID, locationID)).
		From("stock_move_line").
		Where(squirrel.Eq{"state": entity.MoveStateDone}).
		Where(squirrel.Or{
			squirrel.Eq{"location_id": locationID},
			squirrel.Eq{"location_dest_id": locationID},
		}).
		Where(squirrel.Lt{"date": at}).
		GroupBy("product_id").
		Having(qtyIn+" <> "+qtyOut, locationID, locationID).
		OrderBy("product_id").
		ToSql()
}

// BalancesAt implements stock.Repository.
func (r *StockRepo) BalancesAt(ctx context.Context, locationID id.ID, at time.Time) ([]stock.Balance, error) {
	sql, args, err := balancesQuery(locationID, at)
	if err != nil {
		return nil, fmt.Errorf("build balances query: %w", err)
	}

	var out []stock.Balance
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("location balances: %w", err)
	}
	return out, nil
}

var _ stock.Repository = (*StockRepo)(nil)
