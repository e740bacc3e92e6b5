package purchase

import (
	"context"

	"smeerp/internal/core/id"
)

// Repository defines operations for purchase orders.
type Repository interface {
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error)

	// UpdateState saves state and approval date with optimistic locking.
	UpdateState(ctx context.Context, order *Order) error
}
