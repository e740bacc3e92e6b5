package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"smeerp/internal/core/apperror"
)

// CopyRows loads items into table over the COPY protocol. row maps one
// item to its values in column order. Requires a transaction: stock moves,
// their lines and valuation layers must land together or not at all.
func CopyRows[T any](ctx context.Context, table string, columns []string, items []T, row func(T) []any) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	tx := MustGetTxManager(ctx).GetTx(ctx)
	if tx == nil {
		return 0, fmt.Errorf("copy into %s: no transaction in context", table)
	}

	src := pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
		return row(items[i]), nil
	})
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, src)
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// UpdateEach sends one statement per item in a single round trip. Every
// statement must touch exactly one row; a miss means the row was removed
// under us and the whole transaction is reported as a conflict.
func UpdateEach[T any](ctx context.Context, items []T, stmt func(T) squirrel.Sqlizer) error {
	if len(items) == 0 {
		return nil
	}
	tx := MustGetTxManager(ctx).GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("batch update: no transaction in context")
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		sql, args, err := stmt(item).ToSql()
		if err != nil {
			return fmt.Errorf("build batch statement: %w", err)
		}
		batch.Queue(sql, args...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range items {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
		if tag.RowsAffected() != 1 {
			return apperror.NewConflict("record was modified by another transaction")
		}
	}
	return nil
}
