package entity

import (
	"time"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
)

// Document is the base of approvable and stock documents.
type Document struct {
	BaseDocument

	// Name is the human reference (e.g. "SP/2026/00012")
	Name string `db:"name" json:"name"`

	// OwnerID is the user responsible for the document.
	OwnerID id.ID `db:"owner_id" json:"ownerId"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(ownerID id.ID) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		OwnerID:      ownerID,
	}
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}

// ValidateNotFuture rejects a business date later than now.
// Backdated stock operations use it for their editable date fields.
func ValidateNotFuture(field, label string, date, now time.Time) error {
	if date.IsZero() {
		return apperror.NewValidation(label+" is required").WithDetail("field", field)
	}
	if date.After(now) {
		return apperror.NewBusinessRule(
			apperror.CodeBackdateInFuture,
			label+" must be earlier than the current date",
		).WithDetail("field", field).WithDetail("value", date)
	}
	return nil
}
