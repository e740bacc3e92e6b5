// Package approval implements multi-approver sign-off shared by expense
// sheets and purchase orders.
package approval

import (
	"context"
	"time"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
)

// Status is an approver's progress.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusToApprove Status = "to_approve"
	StatusApproved  Status = "approved"
	StatusRefused   Status = "refused"
)

// Approver is a user who must sign off a document.
type Approver struct {
	ID           id.ID     `db:"id" json:"id"`
	DocumentType string    `db:"document_type" json:"documentType"`
	DocumentID   id.ID     `db:"document_id" json:"documentId"`
	UserID       id.ID     `db:"user_id" json:"userId"`
	Status       Status    `db:"status" json:"status"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Approvers is a document's approver list.
type Approvers []*Approver

// ForUser returns the caller's approver entry, or nil.
func (a Approvers) ForUser(userID id.ID) *Approver {
	for _, ap := range a {
		if ap.UserID == userID {
			return ap
		}
	}
	return nil
}

// AllIn reports whether every approver has status. False for an empty list.
func (a Approvers) AllIn(status Status) bool {
	if len(a) == 0 {
		return false
	}
	for _, ap := range a {
		if ap.Status != status {
			return false
		}
	}
	return true
}

// Pending returns approvers not yet asked (draft or sent).
func (a Approvers) Pending() Approvers {
	var out Approvers
	for _, ap := range a {
		if ap.Status == StatusDraft || ap.Status == StatusSent {
			out = append(out, ap)
		}
	}
	return out
}

// Document identifies the document under approval.
type Document struct {
	Type    string
	ID      id.ID
	Name    string
	OwnerID id.ID
}

// ValidateNewApprover rejects duplicates and the document owner.
func ValidateNewApprover(existing Approvers, doc Document, userID id.ID) error {
	if id.IsNil(userID) {
		return apperror.NewValidation("approver user is required").WithDetail("field", "userId")
	}
	if existing.ForUser(userID) != nil {
		return apperror.NewDuplicate("approver", "user_id", userID.String())
	}
	if userID == doc.OwnerID {
		return apperror.NewBusinessRule(apperror.CodeOwnDocument, "the document owner cannot approve it").
			WithDetail("userId", userID)
	}
	return nil
}

// Repository persists approvers.
type Repository interface {
	ListByDocument(ctx context.Context, docType string, docID id.ID) (Approvers, error)
	Create(ctx context.Context, approver *Approver) error
	UpdateStatus(ctx context.Context, approvers Approvers) error
}
