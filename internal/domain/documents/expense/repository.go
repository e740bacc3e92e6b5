package expense

import (
	"context"

	"smeerp/internal/core/id"
)

// Repository defines operations for expense sheets.
type Repository interface {
	GetByID(ctx context.Context, sheetID id.ID) (*Sheet, error)

	// GetForUpdate locks the sheet row until the transaction ends.
	GetForUpdate(ctx context.Context, sheetID id.ID) (*Sheet, error)

	// UpdateState saves state and responsible with optimistic locking.
	UpdateState(ctx context.Context, sheet *Sheet) error
}
