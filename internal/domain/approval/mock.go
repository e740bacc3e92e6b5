package approval

import (
	"context"
	"sync"

	"smeerp/internal/core/id"
)

// MockRepository is an in-memory Repository for unit tests.
type MockRepository struct {
	mu    sync.Mutex
	items []*Approver

	// Updates counts UpdateStatus calls.
	Updates int
}

// Seed adds approvers for docType/docID with the given users and status.
func (m *MockRepository) Seed(docType string, docID id.ID, status Status, users ...id.ID) Approvers {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out Approvers
	for _, u := range users {
		a := &Approver{ID: id.New(), DocumentType: docType, DocumentID: docID, UserID: u, Status: status}
		m.items = append(m.items, a)
		out = append(out, a)
	}
	return out
}

// ListByDocument implements Repository. It returns copies so callers see
// persisted state only after UpdateStatus.
func (m *MockRepository) ListByDocument(_ context.Context, docType string, docID id.ID) (Approvers, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out Approvers
	for _, a := range m.items {
		if a.DocumentType == docType && a.DocumentID == docID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Create implements Repository.
func (m *MockRepository) Create(_ context.Context, approver *Approver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *approver
	m.items = append(m.items, &cp)
	return nil
}

// UpdateStatus implements Repository.
func (m *MockRepository) UpdateStatus(_ context.Context, approvers Approvers) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates++
	for _, u := range approvers {
		for _, a := range m.items {
			if a.ID == u.ID {
				a.Status = u.Status
				a.UpdatedAt = u.UpdatedAt
			}
		}
	}
	return nil
}
