package postgres

import (
	"context"
)

type txManagerKey struct{}

// WithTxManager stores the TxManager in ctx. The HTTP layer and the worker
// set it once per request or batch.
func WithTxManager(ctx context.Context, m *TxManager) context.Context {
	return context.WithValue(ctx, txManagerKey{}, m)
}

// GetTxManager returns the TxManager from ctx, or nil.
func GetTxManager(ctx context.Context) *TxManager {
	if m, ok := ctx.Value(txManagerKey{}).(*TxManager); ok {
		return m
	}
	return nil
}

// MustGetTxManager returns the TxManager from ctx and panics when absent.
// Repositories use it to reach GetQuerier; domain code depends on tx.Manager only.
func MustGetTxManager(ctx context.Context) *TxManager {
	m := GetTxManager(ctx)
	if m == nil {
		panic("postgres: TxManager missing from context")
	}
	return m
}
