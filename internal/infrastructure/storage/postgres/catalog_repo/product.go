package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"smeerp/internal/core/id"
	"smeerp/internal/domain/catalogs/product"
)

const productTable = "product"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*catalog[product.Product]
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo() *ProductRepo {
	return &ProductRepo{
		catalog: newCatalog[product.Product](productTable, "product"),
	}
}

// FindByIDs returns products in ids, archived ones included.
func (r *ProductRepo) FindByIDs(ctx context.Context, ids []id.ID) ([]*product.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.many(ctx, findByIDsQuery(r.selectAll(), ids))
}

func findByIDsQuery(q squirrel.SelectBuilder, ids []id.ID) squirrel.SelectBuilder {
	return q.
		Where(squirrel.Eq{"id": ids}).
		OrderBy("default_code", "name", "id")
}
