// Package stock records done stock moves and their valuation.
package stock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
)

// Balance is a product's quantity in one location.
type Balance struct {
	ProductID id.ID           `db:"product_id"`
	Quantity  decimal.Decimal `db:"quantity"`
}

// Repository defines operations for the stock register.
type Repository interface {
	// CreateMoves inserts done moves, each with one move line.
	CreateMoves(ctx context.Context, moves []entity.StockMove) error

	CreateValuationLayers(ctx context.Context, layers []entity.ValuationLayer) error

	// BalancesAt returns non-zero quantities in location from moves dated
	// before at.
	BalancesAt(ctx context.Context, locationID id.ID, at time.Time) ([]Balance, error)
}
