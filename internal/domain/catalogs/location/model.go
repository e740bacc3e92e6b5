// Package location provides stock locations.
package location

import (
	"context"

	"smeerp/internal/core/id"
)

// Usage classifies a location. Only internal locations hold own stock.
type Usage string

const (
	UsageSupplier   Usage = "supplier"
	UsageCustomer   Usage = "customer"
	UsageInternal   Usage = "internal"
	UsageInventory  Usage = "inventory"
	UsageTransit    Usage = "transit"
	UsageProduction Usage = "production"
)

// Location is a node in the location tree.
type Location struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	// CompleteName is the full path, e.g. "WH/Stock/Shelf 1".
	CompleteName string `db:"complete_name" json:"completeName"`

	Usage Usage `db:"usage" json:"usage"`

	// ScrapLocation marks locations that receive scrapped goods.
	ScrapLocation bool `db:"scrap_location" json:"scrapLocation"`
}

// IsInternal reports whether the location holds own stock.
func (l *Location) IsInternal() bool {
	return l.Usage == UsageInternal
}

// Repository defines Location lookups.
type Repository interface {
	GetByID(ctx context.Context, locationID id.ID) (*Location, error)

	// DefaultScrap returns the first scrap location.
	DefaultScrap(ctx context.Context) (*Location, error)

	// DefaultInventoryLoss returns the first location with inventory usage.
	DefaultInventoryLoss(ctx context.Context) (*Location, error)
}
