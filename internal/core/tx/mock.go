package tx

import "context"

// MockManager runs fn directly for unit tests. Err, when set, is returned
// instead of calling fn.
type MockManager struct {
	Err   error
	Calls int
}

// RunInTransaction implements Manager.
func (m *MockManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx)
}

// ReadOnly implements Snapshotter the same way.
func (m *MockManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransaction(ctx, fn)
}

var (
	_ Manager     = (*MockManager)(nil)
	_ Snapshotter = (*MockManager)(nil)
)
