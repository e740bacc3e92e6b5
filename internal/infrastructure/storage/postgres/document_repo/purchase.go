package document_repo

import (
	"context"

	"smeerp/internal/core/id"
	"smeerp/internal/domain/documents/purchase"
)

// PurchaseOrderRepo implements purchase.Repository.
type PurchaseOrderRepo struct {
	base *BaseDocumentRepo[purchase.Order]
}

// NewPurchaseOrderRepo creates a new purchase order repository.
func NewPurchaseOrderRepo() *PurchaseOrderRepo {
	return &PurchaseOrderRepo{
		base: NewBaseDocumentRepo[purchase.Order]("purchase_order", "po", purchase.DocumentType, nil),
	}
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, orderID id.ID) (*purchase.Order, error) {
	return r.base.GetByID(ctx, orderID)
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*purchase.Order, error) {
	return r.base.GetForUpdate(ctx, orderID)
}

func (r *PurchaseOrderRepo) UpdateState(ctx context.Context, order *purchase.Order) error {
	return r.base.Update(ctx, order, "state", "date_approve")
}

var _ purchase.Repository = (*PurchaseOrderRepo)(nil)
