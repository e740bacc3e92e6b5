package location

import (
	"context"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
)

// MockRepository serves a fixed location list for unit tests.
type MockRepository struct {
	Items []*Location
}

// GetByID implements Repository.
func (m *MockRepository) GetByID(_ context.Context, locationID id.ID) (*Location, error) {
	for _, l := range m.Items {
		if l.ID == locationID {
			return l, nil
		}
	}
	return nil, apperror.NewNotFound("location", locationID)
}

// DefaultScrap implements Repository.
func (m *MockRepository) DefaultScrap(_ context.Context) (*Location, error) {
	for _, l := range m.Items {
		if l.ScrapLocation {
			return l, nil
		}
	}
	return nil, apperror.NewNotFound("scrap location", "default")
}

// DefaultInventoryLoss implements Repository.
func (m *MockRepository) DefaultInventoryLoss(_ context.Context) (*Location, error) {
	for _, l := range m.Items {
		if l.Usage == UsageInventory && !l.ScrapLocation {
			return l, nil
		}
	}
	return nil, apperror.NewNotFound("inventory loss location", "default")
}

var _ Repository = (*MockRepository)(nil)
