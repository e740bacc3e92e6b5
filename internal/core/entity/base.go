// Package entity provides the stored shapes shared by documents and stock movements.
package entity

import (
	"time"

	"smeerp/internal/core/id"
)

// BaseEntity is the identity of a stored row plus its optimistic lock.
// Updates match on Version-1 and write Version.
type BaseEntity struct {
	ID      id.ID `db:"id" json:"id"`
	Version int   `db:"version" json:"version"`
}

// BaseDocument adds who-and-when columns. CreatedBy and UpdatedBy hold
// user ids as text; background jobs leave them empty.
type BaseDocument struct {
	BaseEntity

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy,omitempty"`
}

// NewBaseDocument starts a document at version 1.
func NewBaseDocument() BaseDocument {
	now := time.Now().UTC()
	return BaseDocument{
		BaseEntity: BaseEntity{ID: id.New(), Version: 1},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Stamp marks a pending update by userID. An empty userID keeps the last
// editor.
func (b *BaseDocument) Stamp(userID string, at time.Time) {
	if userID != "" {
		b.UpdatedBy = userID
	}
	b.UpdatedAt = at.UTC()
	b.Version++
}
