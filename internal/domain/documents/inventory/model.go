// Package inventory provides backdatable inventory adjustments.
package inventory

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
)

// DocumentType tags inventories in moves and audit rows.
const DocumentType = "inventory"

// State is the adjustment lifecycle.
type State string

const (
	StateDraft   State = "draft"
	StateConfirm State = "confirm"
	StateDone    State = "done"
	StateCancel  State = "cancel"
)

// Inventory counts the stock of one internal location at Date.
type Inventory struct {
	entity.Document

	LocationID id.ID     `db:"location_id" json:"locationId"`
	Date       time.Time `db:"date" json:"date"`
	State      State     `db:"state" json:"state"`

	// StartEmpty skips prefilling lines from current stock.
	StartEmpty bool `db:"start_empty" json:"startEmpty"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one counted product.
type Line struct {
	ID             id.ID           `db:"id" json:"id"`
	InventoryID    id.ID           `db:"inventory_id" json:"inventoryId"`
	ProductID      id.ID           `db:"product_id" json:"productId"`
	TheoreticalQty decimal.Decimal `db:"theoretical_qty" json:"theoreticalQty"`
	ProductQty     decimal.Decimal `db:"product_qty" json:"productQty"`
}

// Difference is counted minus expected; positive means surplus.
func (l Line) Difference() decimal.Decimal {
	return l.ProductQty.Sub(l.TheoreticalQty)
}

// SetDate moves the adjustment to date. Only drafts can be backdated.
func (inv *Inventory) SetDate(date, now time.Time) error {
	if err := inv.requireState("change date of", StateDraft); err != nil {
		return err
	}
	if err := entity.ValidateNotFuture("date", "Inventory Date", date, now); err != nil {
		return err
	}
	inv.Date = date
	return nil
}

func (inv *Inventory) requireState(action string, allowed ...State) error {
	if !slices.Contains(allowed, inv.State) {
		return apperror.NewInvalidTransition(DocumentType, string(inv.State), action)
	}
	return nil
}
