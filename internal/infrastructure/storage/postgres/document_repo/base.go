// Package document_repo provides PostgreSQL implementations for document repositories.
// TxManager is obtained from context per-request.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
	"smeerp/internal/infrastructure/storage/postgres"
)

// BaseDocumentRepo provides locked reads and optimistic updates for
// document headers. The header table is always aliased.
type BaseDocumentRepo[T any] struct {
	table      string
	alias      string
	entityName string
	selectCols []string
	joins      []string
}

// NewBaseDocumentRepo creates a repository over table AS alias. Columns
// come from T's db tags; computed maps a tag to the expression that
// produces it, usually from a joined table.
func NewBaseDocumentRepo[T any](table, alias, entityName string, computed map[string]string, joins ...string) *BaseDocumentRepo[T] {
	tags := postgres.ExtractDBColumns[T]()
	cols := make([]string, 0, len(tags))
	for _, tag := range tags {
		if expr, ok := computed[tag]; ok {
			cols = append(cols, expr+" AS "+tag)
			continue
		}
		cols = append(cols, alias+"."+tag)
	}
	return &BaseDocumentRepo[T]{
		table:      table,
		alias:      alias,
		entityName: entityName,
		selectCols: cols,
		joins:      joins,
	}
}

// getTxManager retrieves TxManager from context.
func (r *BaseDocumentRepo[T]) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// Builder returns a new squirrel builder.
func (r *BaseDocumentRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseDocumentRepo[T]) baseSelect() squirrel.SelectBuilder {
	q := r.Builder().
		Select(r.selectCols...).
		From(r.table + " " + r.alias)
	for _, j := range r.joins {
		q = q.JoinClause(j)
	}
	return q
}

func (r *BaseDocumentRepo[T]) byID(entityID id.ID, lock bool) squirrel.SelectBuilder {
	q := r.baseSelect().Where(squirrel.Eq{r.alias + ".id": entityID})
	if lock {
		q = q.Suffix("FOR UPDATE OF " + r.alias)
	}
	return q
}

// GetByID retrieves a document header by ID.
func (r *BaseDocumentRepo[T]) GetByID(ctx context.Context, entityID id.ID) (*T, error) {
	return r.get(ctx, r.byID(entityID, false), entityID)
}

// GetForUpdate retrieves a document header with a row lock.
func (r *BaseDocumentRepo[T]) GetForUpdate(ctx context.Context, entityID id.ID) (*T, error) {
	return r.get(ctx, r.byID(entityID, true), entityID)
}

func (r *BaseDocumentRepo[T]) get(ctx context.Context, q squirrel.SelectBuilder, entityID id.ID) (*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entity T
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entityName, entityID.String())
		}
		return nil, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return &entity, nil
}

// updateQuery saves cols of an already stamped entity. The row must still
// be at the previous version.
func (r *BaseDocumentRepo[T]) updateQuery(entity *T, cols ...string) (string, []any, error) {
	data := postgres.StructToMap(entity)

	entityID, ok := data["id"]
	if !ok {
		return "", nil, fmt.Errorf("%s has no id column", r.entityName)
	}
	version, ok := data["version"].(int)
	if !ok {
		return "", nil, fmt.Errorf("%s has no int version column", r.entityName)
	}

	set := make(map[string]any, len(cols)+3)
	for _, col := range append(cols, "version", "updated_at", "updated_by") {
		val, ok := data[col]
		if !ok {
			return "", nil, fmt.Errorf("%s has no %s column", r.entityName, col)
		}
		set[col] = val
	}

	return r.Builder().
		Update(r.table).
		SetMap(set).
		Where(squirrel.Eq{"id": entityID, "version": version - 1}).
		ToSql()
}

// Update saves cols with optimistic locking.
func (r *BaseDocumentRepo[T]) Update(ctx context.Context, entity *T, cols ...string) error {
	sql, args, err := r.updateQuery(entity, cols...)
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict(r.entityName + " was modified by another transaction").
			WithDetail("id", postgres.StructToMap(entity)["id"])
	}
	return nil
}
