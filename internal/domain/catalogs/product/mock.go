package product

import (
	"context"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
)

// MockRepository serves a fixed product list for unit tests.
type MockRepository struct {
	Items []*Product
}

// GetByID implements Repository.
func (m *MockRepository) GetByID(_ context.Context, productID id.ID) (*Product, error) {
	for _, p := range m.Items {
		if p.ID == productID {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", productID)
}

// FindByIDs implements Repository. Items keep their slice order.
func (m *MockRepository) FindByIDs(_ context.Context, ids []id.ID) ([]*Product, error) {
	want := make(map[id.ID]struct{}, len(ids))
	for _, v := range ids {
		want[v] = struct{}{}
	}
	var out []*Product
	for _, p := range m.Items {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ Repository = (*MockRepository)(nil)
