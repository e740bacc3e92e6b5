package scrap

import (
	"context"

	"smeerp/internal/core/id"
)

// Repository defines operations for scrap orders.
type Repository interface {
	GetByID(ctx context.Context, scrapID id.ID) (*Scrap, error)
	GetForUpdate(ctx context.Context, scrapID id.ID) (*Scrap, error)

	// Update saves the scrap with optimistic locking.
	Update(ctx context.Context, doc *Scrap) error
}
