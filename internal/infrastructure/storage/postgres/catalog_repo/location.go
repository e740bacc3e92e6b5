package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"smeerp/internal/domain/catalogs/location"
)

const locationTable = "stock_location"

// LocationRepo implements location.Repository.
type LocationRepo struct {
	*catalog[location.Location]
}

var _ location.Repository = (*LocationRepo)(nil)

// NewLocationRepo creates a new location repository.
func NewLocationRepo() *LocationRepo {
	return &LocationRepo{
		catalog: newCatalog[location.Location](locationTable, "stock_location"),
	}
}

// DefaultScrap returns the first scrap location by name.
func (r *LocationRepo) DefaultScrap(ctx context.Context) (*location.Location, error) {
	q := r.selectAll().
		Where(squirrel.Eq{"scrap_location": true}).
		OrderBy("complete_name", "id")
	return r.one(ctx, q, "scrap")
}

// DefaultInventoryLoss returns the first inventory-usage location.
func (r *LocationRepo) DefaultInventoryLoss(ctx context.Context) (*location.Location, error) {
	q := r.selectAll().
		Where(squirrel.Eq{"usage": location.UsageInventory}).
		Where(squirrel.Eq{"scrap_location": false}).
		OrderBy("complete_name", "id")
	return r.one(ctx, q, string(location.UsageInventory))
}
