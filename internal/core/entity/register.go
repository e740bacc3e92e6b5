package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"smeerp/internal/core/id"
)

// MoveState is the lifecycle state of a stock move.
type MoveState string

const (
	MoveStateDraft MoveState = "draft"
	MoveStateDone  MoveState = "done"
)

// StockMove is one done movement of a product between two locations.
// Moves are immutable once done.
type StockMove struct {
	ID             id.ID           `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Reference      string          `db:"reference" json:"reference"`
	Origin         string          `db:"origin" json:"origin,omitempty"`
	ProductID      id.ID           `db:"product_id" json:"productId"`
	LocationID     id.ID           `db:"location_id" json:"locationId"`
	LocationDestID id.ID           `db:"location_dest_id" json:"locationDestId"`
	UomID          *id.ID          `db:"uom_id" json:"uomId,omitempty"`
	Quantity       decimal.Decimal `db:"quantity" json:"quantity"`
	Date           time.Time       `db:"date" json:"date"`
	State          MoveState       `db:"state" json:"state"`

	// RecorderID is the document that produced the move.
	RecorderID   id.ID  `db:"recorder_id" json:"recorderId"`
	RecorderType string `db:"recorder_type" json:"recorderType"`
}

// NewStockMove creates a done move dated at date.
func NewStockMove(recorderType string, recorderID id.ID, reference string, productID, from, to id.ID, qty decimal.Decimal, date time.Time) StockMove {
	return StockMove{
		ID:             id.New(),
		Name:           reference,
		Reference:      reference,
		ProductID:      productID,
		LocationID:     from,
		LocationDestID: to,
		Quantity:       qty,
		Date:           date,
		State:          MoveStateDone,
		RecorderID:     recorderID,
		RecorderType:   recorderType,
	}
}

// ValuationLayer values one stock move. Quantity and Value are negative
// for stock leaving the company.
type ValuationLayer struct {
	ID          id.ID           `db:"id" json:"id"`
	StockMoveID id.ID           `db:"stock_move_id" json:"stockMoveId"`
	ProductID   id.ID           `db:"product_id" json:"productId"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitCost    decimal.Decimal `db:"unit_cost" json:"unitCost"`
	Value       decimal.Decimal `db:"value" json:"value"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}
