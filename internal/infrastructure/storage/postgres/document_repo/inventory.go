package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"smeerp/internal/core/id"
	"smeerp/internal/domain/documents/inventory"
	"smeerp/internal/infrastructure/storage/postgres"
)

const inventoryLinesTable = "stock_inventory_line"

var inventoryLineColumns = postgres.ExtractDBColumns[inventory.Line]()

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	base *BaseDocumentRepo[inventory.Inventory]
}

// NewInventoryRepo creates a new inventory repository.
func NewInventoryRepo() *InventoryRepo {
	return &InventoryRepo{
		base: NewBaseDocumentRepo[inventory.Inventory]("stock_inventory", "inv", inventory.DocumentType, nil),
	}
}

func (r *InventoryRepo) GetByID(ctx context.Context, docID id.ID) (*inventory.Inventory, error) {
	inv, err := r.base.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	return r.loadLines(ctx, inv)
}

func (r *InventoryRepo) GetForUpdate(ctx context.Context, docID id.ID) (*inventory.Inventory, error) {
	inv, err := r.base.GetForUpdate(ctx, docID)
	if err != nil {
		return nil, err
	}
	return r.loadLines(ctx, inv)
}

func (r *InventoryRepo) loadLines(ctx context.Context, inv *inventory.Inventory) (*inventory.Inventory, error) {
	lines, err := r.getLines(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	return inv, nil
}

func (r *InventoryRepo) getLines(ctx context.Context, docID id.ID) ([]inventory.Line, error) {
	sql, args, err := r.base.Builder().
		Select(inventoryLineColumns...).
		From(inventoryLinesTable).
		Where(squirrel.Eq{"inventory_id": docID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []inventory.Line
	querier := r.base.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get inventory lines: %w", err)
	}
	return lines, nil
}

func (r *InventoryRepo) Update(ctx context.Context, doc *inventory.Inventory) error {
	return r.base.Update(ctx, doc, "name", "date", "state")
}

// CreateLines copies lines in with the COPY protocol. Requires a transaction.
func (r *InventoryRepo) CreateLines(ctx context.Context, lines []inventory.Line) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := postgres.CopyRows(ctx, inventoryLinesTable, inventoryLineColumns, lines, func(l inventory.Line) []any {
		return []any{l.ID, l.InventoryID, l.ProductID, l.TheoreticalQty, l.ProductQty}
	})
	return err
}

var _ inventory.Repository = (*InventoryRepo)(nil)
