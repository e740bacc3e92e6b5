// Package scrap provides backdatable scrap orders.
package scrap

import (
	"time"

	"github.com/shopspring/decimal"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
)

// DocumentType tags scraps in moves and audit rows.
const DocumentType = "scrap"

// State is the scrap lifecycle.
type State string

const (
	StateDraft State = "draft"
	StateDone  State = "done"
)

// Scrap removes a quantity of one product from an internal location.
type Scrap struct {
	entity.Document

	ProductID  id.ID           `db:"product_id" json:"productId"`
	Quantity   decimal.Decimal `db:"scrap_qty" json:"scrapQty"`
	LocationID id.ID           `db:"location_id" json:"locationId"`

	// ScrapLocationID defaults to the first scrap location when nil.
	ScrapLocationID *id.ID `db:"scrap_location_id" json:"scrapLocationId,omitempty"`

	Origin   string    `db:"origin" json:"origin,omitempty"`
	DateDone time.Time `db:"date_done" json:"dateDone"`
	State    State     `db:"state" json:"state"`
	MoveID   *id.ID    `db:"move_id" json:"moveId,omitempty"`
}

// SetDateDone backdates a draft scrap.
func (s *Scrap) SetDateDone(date, now time.Time) error {
	if s.State != StateDraft {
		return apperror.NewInvalidTransition(DocumentType, string(s.State), "change date of")
	}
	if err := entity.ValidateNotFuture("date_done", "Date", date, now); err != nil {
		return err
	}
	s.DateDone = date
	return nil
}

// Validate checks the fields DoScrap needs.
func (s *Scrap) Validate() error {
	if id.IsNil(s.ProductID) {
		return apperror.NewValidation("product is required").WithDetail("field", "product_id")
	}
	if id.IsNil(s.LocationID) {
		return apperror.NewValidation("location is required").WithDetail("field", "location_id")
	}
	if !s.Quantity.IsPositive() {
		return apperror.NewValidation("scrap quantity must be positive").WithDetail("field", "scrap_qty")
	}
	return nil
}
