package domain

import (
	"context"
	"sync"
)

// MockPublisher records published events for unit tests.
type MockPublisher struct {
	Err error

	mu     sync.Mutex
	Events []Event
}

// Publish implements EventPublisher.
func (m *MockPublisher) Publish(_ context.Context, events ...Event) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, events...)
	return nil
}

// OfType returns the recorded events with eventType.
func (m *MockPublisher) OfType(eventType string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.Events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
