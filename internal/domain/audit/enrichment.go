// Package audit records who changed a document and why.
package audit

import (
	"context"
	"time"

	appctx "smeerp/internal/core/context"
	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
)

// Action is the audited operation.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionRefuse   Action = "refuse"
	ActionSubmit   Action = "submit"
	ActionConfirm  Action = "confirm"
	ActionBackdate Action = "backdate"
	ActionValidate Action = "validate"
	ActionScrap    Action = "scrap"
)

// Entry is one audit record.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	Changes    map[string]any
}

// Recorder persists audit entries in the caller's transaction.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Stamp marks doc as updated by the context user now.
func Stamp(ctx context.Context, doc *entity.BaseDocument) {
	doc.Stamp(appctx.GetUserID(ctx), time.Now())
}
