// Package tx is the transaction boundary seen by domain services.
// storage/postgres.TxManager implements both interfaces.
package tx

import (
	"context"
)

// Manager commits when fn returns nil and rolls back otherwise. A call
// made while ctx already carries a transaction joins it, so a document
// and the stock moves it records always commit together.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Snapshotter runs fn read-only against one snapshot, so every query of
// a report sees the same moves.
type Snapshotter interface {
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
