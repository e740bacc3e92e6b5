// Package currency provides the home currency used for zero tests and rounding.
package currency

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"

	"smeerp/internal/core/apperror"
)

// Currency is a monetary unit with its rounding precision.
type Currency struct {
	// Code is the ISO 4217 alphabetic code
	Code string `db:"code" json:"code"`

	Symbol string `db:"symbol" json:"symbol,omitempty"`

	// DecimalPlaces is the rounding precision
	DecimalPlaces int32 `db:"decimal_places" json:"decimalPlaces"`
}

// New creates a currency.
func New(code string, decimalPlaces int32) *Currency {
	return &Currency{Code: code, DecimalPlaces: decimalPlaces}
}

var isoCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Validate checks the code and precision.
func (c *Currency) Validate() error {
	if !isoCode.MatchString(c.Code) {
		return apperror.NewValidation("ISO code must be 3 uppercase letters").
			WithDetail("field", "code").
			WithDetail("value", c.Code)
	}
	if c.DecimalPlaces < 0 || c.DecimalPlaces > 8 {
		return apperror.NewValidation("decimal places must be between 0 and 8").
			WithDetail("field", "decimalPlaces")
	}
	return nil
}

// Round rounds v half away from zero to the currency precision.
func (c *Currency) Round(v decimal.Decimal) decimal.Decimal {
	return v.Round(c.DecimalPlaces)
}

// IsZero reports whether v rounds to zero at the currency precision.
func (c *Currency) IsZero(v decimal.Decimal) bool {
	return c.Round(v).IsZero()
}

// Format renders v with exactly DecimalPlaces fractional digits.
func (c *Currency) Format(v decimal.Decimal) string {
	return c.Round(v).StringFixed(c.DecimalPlaces)
}

// Repository loads currencies.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Currency, error)
}
