package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"smeerp/internal/domain/catalogs/currency"
)

const currencyTable = "currency"

// CurrencyRepo implements currency.Repository.
type CurrencyRepo struct {
	*catalog[currency.Currency]
}

var _ currency.Repository = (*CurrencyRepo)(nil)

// NewCurrencyRepo creates a new currency repository.
func NewCurrencyRepo() *CurrencyRepo {
	return &CurrencyRepo{
		catalog: newCatalog[currency.Currency](currencyTable, "currency"),
	}
}

// FindByCode retrieves a currency by ISO code.
func (r *CurrencyRepo) FindByCode(ctx context.Context, code string) (*currency.Currency, error) {
	return r.one(ctx, r.selectAll().Where(squirrel.Eq{"code": code}), code)
}
