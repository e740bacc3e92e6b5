// Package product provides the Product catalog read by stock reports and documents.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"smeerp/internal/core/id"
)

// Product is a stockable item.
type Product struct {
	ID id.ID `db:"id" json:"id"`

	// DefaultCode is the internal reference (SKU)
	DefaultCode *string `db:"default_code" json:"defaultCode,omitempty"`

	Name string `db:"name" json:"name"`

	// Active is false for discontinued products; history still references them.
	Active bool `db:"active" json:"active"`

	// StandardPrice is the unit cost used to value moves.
	StandardPrice decimal.Decimal `db:"standard_price" json:"standardPrice"`

	UomID *id.ID `db:"uom_id" json:"uomId,omitempty"`
}

// DisplayName renders "[CODE] Name" or just the name.
func (p *Product) DisplayName() string {
	if p.DefaultCode != nil && *p.DefaultCode != "" {
		return "[" + *p.DefaultCode + "] " + p.Name
	}
	return p.Name
}

// Repository defines Product lookups.
type Repository interface {
	// GetByID returns one product, active or not.
	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	// FindByIDs returns the matching products including inactive ones,
	// ordered by default code, name and id.
	FindByIDs(ctx context.Context, ids []id.ID) ([]*Product, error)
}
