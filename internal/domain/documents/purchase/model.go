// Package purchase provides purchase orders with multi-approver confirmation.
package purchase

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
	"smeerp/internal/domain/approval"
)

// DocumentType tags purchase orders in approvers, audit and outbox rows.
const DocumentType = "purchase_order"

// State is the order lifecycle.
type State string

const (
	StateDraft     State = "draft"
	StateSent      State = "sent"
	StateToApprove State = "to_approve"
	StatePurchase  State = "purchase"
	StateDone      State = "done"
	StateCancel    State = "cancel"
)

// Order is a purchase order (RFQ until approved).
type Order struct {
	entity.Document

	PartnerID    id.ID           `db:"partner_id" json:"partnerId"`
	State        State           `db:"state" json:"state"`
	DateOrder    time.Time       `db:"date_order" json:"dateOrder"`
	DateApprove  *time.Time      `db:"date_approve" json:"dateApprove,omitempty"`
	AmountTotal  decimal.Decimal `db:"amount_total" json:"amountTotal"`
	CurrencyCode string          `db:"currency_code" json:"currencyCode"`

	Approvers approval.Approvers `db:"-" json:"approvers"`
}

func (o *Order) approvalDocument() approval.Document {
	return approval.Document{Type: DocumentType, ID: o.ID, Name: o.Name, OwnerID: o.OwnerID}
}

func (o *Order) requireState(action string, allowed ...State) error {
	if !slices.Contains(allowed, o.State) {
		return apperror.NewInvalidTransition(DocumentType, string(o.State), action)
	}
	return nil
}

// approve turns the RFQ into a purchase order.
func (o *Order) approve(at time.Time) {
	o.State = StatePurchase
	o.DateApprove = &at
}
