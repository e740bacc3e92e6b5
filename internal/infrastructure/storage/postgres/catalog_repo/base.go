// Package catalog_repo reads the reference catalogs: products, stock
// locations and currencies. They are maintained outside this service, so
// the repositories here never write.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
	"smeerp/internal/infrastructure/storage/postgres"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// catalog reads rows of one table into T. Columns come from T's db tags.
type catalog[T any] struct {
	table  string
	entity string
	cols   []string
}

func newCatalog[T any](table, entity string) *catalog[T] {
	return &catalog[T]{
		table:  table,
		entity: entity,
		cols:   postgres.ExtractDBColumns[T](),
	}
}

func (c *catalog[T]) selectAll() squirrel.SelectBuilder {
	return psql.Select(c.cols...).From(c.table)
}

// GetByID returns NotFound for an unknown id.
func (c *catalog[T]) GetByID(ctx context.Context, entityID id.ID) (*T, error) {
	return c.one(ctx, c.selectAll().Where(squirrel.Eq{"id": entityID}), entityID.String())
}

// one returns the first row of q; key names the lookup in NotFound.
func (c *catalog[T]) one(ctx context.Context, q squirrel.SelectBuilder, key string) (*T, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", c.entity, err)
	}

	var row T
	err = pgxscan.Get(ctx, postgres.MustGetTxManager(ctx).GetQuerier(ctx), &row, sql, args...)
	switch {
	case pgxscan.NotFound(err):
		return nil, apperror.NewNotFound(c.entity, key)
	case err != nil:
		return nil, fmt.Errorf("get %s %s: %w", c.entity, key, err)
	}
	return &row, nil
}

func (c *catalog[T]) many(ctx context.Context, q squirrel.SelectBuilder) ([]*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", c.entity, err)
	}

	var rows []*T
	if err := pgxscan.Select(ctx, postgres.MustGetTxManager(ctx).GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", c.table, err)
	}
	return rows, nil
}
