// Package domain holds the ports shared by document services.
package domain

import (
	"context"

	"smeerp/internal/core/id"
)

// Event is a domain event delivered through the transactional outbox.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// EventPublisher stores events in the caller's transaction.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}
