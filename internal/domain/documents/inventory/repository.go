package inventory

import (
	"context"

	"smeerp/internal/core/id"
)

// Repository defines operations for inventory documents.
type Repository interface {
	// GetByID returns the inventory with its lines.
	GetByID(ctx context.Context, docID id.ID) (*Inventory, error)

	// GetForUpdate locks the inventory row and loads its lines.
	GetForUpdate(ctx context.Context, docID id.ID) (*Inventory, error)

	// Update saves header fields with optimistic locking.
	Update(ctx context.Context, doc *Inventory) error

	CreateLines(ctx context.Context, lines []Line) error
}
