package approval

import (
	"context"
	"fmt"
	"time"

	"smeerp/internal/core/id"
	"smeerp/internal/domain"
)

// Activity event types.
const (
	EventRequested = "approval.requested"
	EventDone      = "approval.done"
)

// Activity is the outbox payload telling a user about an approval step.
type Activity struct {
	DocumentType string `json:"documentType"`
	DocumentID   id.ID  `json:"documentId"`
	DocumentName string `json:"documentName"`
	UserID       id.ID  `json:"userId"`
	Status       Status `json:"status,omitempty"`
	Note         string `json:"note,omitempty"`
}

// Flow updates approvers and schedules their activities. Callers run it
// inside their document transaction.
type Flow struct {
	repo   Repository
	events domain.EventPublisher
	now    func() time.Time
}

// NewFlow creates an approval flow.
func NewFlow(repo Repository, events domain.EventPublisher) *Flow {
	return &Flow{repo: repo, events: events, now: time.Now}
}

// Approvers loads the document's approvers.
func (f *Flow) Approvers(ctx context.Context, doc Document) (Approvers, error) {
	approvers, err := f.repo.ListByDocument(ctx, doc.Type, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("list approvers: %w", err)
	}
	return approvers, nil
}

// Request moves pending approvers to to_approve and schedules one
// activity each. Returns the approvers that were asked.
func (f *Flow) Request(ctx context.Context, doc Document, approvers Approvers) (Approvers, error) {
	pending := approvers.Pending()
	if len(pending) == 0 {
		return nil, nil
	}

	now := f.now().UTC()
	events := make([]domain.Event, 0, len(pending))
	for _, a := range pending {
		a.Status = StatusToApprove
		a.UpdatedAt = now
		events = append(events, activityEvent(EventRequested, doc, a.UserID, a.Status, ""))
	}

	if err := f.repo.UpdateStatus(ctx, pending); err != nil {
		return nil, fmt.Errorf("update approvers: %w", err)
	}
	if err := f.events.Publish(ctx, events...); err != nil {
		return nil, fmt.Errorf("publish approval requests: %w", err)
	}
	return pending, nil
}

// Decide records an approver's decision and closes their activity.
func (f *Flow) Decide(ctx context.Context, doc Document, a *Approver, status Status, note string) error {
	a.Status = status
	a.UpdatedAt = f.now().UTC()
	if err := f.repo.UpdateStatus(ctx, Approvers{a}); err != nil {
		return fmt.Errorf("update approver: %w", err)
	}
	return f.Notify(ctx, doc, EventDone, a.UserID, status, note)
}

// Notify schedules an activity for a user who is not on the approver list.
func (f *Flow) Notify(ctx context.Context, doc Document, eventType string, userID id.ID, status Status, note string) error {
	if err := f.events.Publish(ctx, activityEvent(eventType, doc, userID, status, note)); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// AddApprover appends a draft approver.
func (f *Flow) AddApprover(ctx context.Context, doc Document, userID id.ID) (*Approver, error) {
	existing, err := f.Approvers(ctx, doc)
	if err != nil {
		return nil, err
	}
	if err := ValidateNewApprover(existing, doc, userID); err != nil {
		return nil, err
	}

	a := &Approver{
		ID:           id.New(),
		DocumentType: doc.Type,
		DocumentID:   doc.ID,
		UserID:       userID,
		Status:       StatusDraft,
		UpdatedAt:    f.now().UTC(),
	}
	if err := f.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create approver: %w", err)
	}
	return a, nil
}

func activityEvent(eventType string, doc Document, userID id.ID, status Status, note string) domain.Event {
	return domain.Event{
		AggregateType: doc.Type,
		AggregateID:   doc.ID,
		EventType:     eventType,
		Payload: Activity{
			DocumentType: doc.Type,
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			UserID:       userID,
			Status:       status,
			Note:         note,
		},
	}
}
