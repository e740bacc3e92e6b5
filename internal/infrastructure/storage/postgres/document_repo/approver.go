package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"smeerp/internal/core/id"
	"smeerp/internal/domain/approval"
	"smeerp/internal/infrastructure/storage/postgres"
)

const approversTable = "approver"

var approverColumns = postgres.ExtractDBColumns[approval.Approver]()

// ApproverRepo implements approval.Repository for every document type.
type ApproverRepo struct{}

// NewApproverRepo creates a new approver repository.
func NewApproverRepo() *ApproverRepo {
	return &ApproverRepo{}
}

func (r *ApproverRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ApproverRepo) ListByDocument(ctx context.Context, docType string, docID id.ID) (approval.Approvers, error) {
	sql, args, err := r.builder().
		Select(approverColumns...).
		From(approversTable).
		Where(squirrel.Eq{"document_type": docType, "document_id": docID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out approval.Approvers
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list approvers: %w", err)
	}
	return out, nil
}

func (r *ApproverRepo) Create(ctx context.Context, a *approval.Approver) error {
	sql, args, err := r.builder().
		Insert(approversTable).
		SetMap(postgres.StructToMap(a)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert approver: %w", err)
	}
	return nil
}

// UpdateStatus saves every approver's status in one round trip.
func (r *ApproverRepo) UpdateStatus(ctx context.Context, approvers approval.Approvers) error {
	if len(approvers) == 0 {
		return nil
	}
	return postgres.UpdateEach(ctx, approvers, func(a *approval.Approver) squirrel.Sqlizer {
		return r.builder().
			Update(approversTable).
			Set("status", a.Status).
			Set("updated_at", a.UpdatedAt).
			Where(squirrel.Eq{"id": a.ID})
	})
}

var _ approval.Repository = (*ApproverRepo)(nil)
