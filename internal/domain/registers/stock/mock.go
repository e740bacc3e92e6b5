package stock

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
)

// MockRepository keeps moves and layers in memory for unit tests.
type MockRepository struct {
	Moves  []entity.StockMove
	Layers []entity.ValuationLayer
}

// CreateMoves implements Repository.
func (m *MockRepository) CreateMoves(_ context.Context, moves []entity.StockMove) error {
	m.Moves = append(m.Moves, moves...)
	return nil
}

// CreateValuationLayers implements Repository.
func (m *MockRepository) CreateValuationLayers(_ context.Context, layers []entity.ValuationLayer) error {
	m.Layers = append(m.Layers, layers...)
	return nil
}

// BalancesAt implements Repository.
func (m *MockRepository) BalancesAt(_ context.Context, locationID id.ID, at time.Time) ([]Balance, error) {
	totals := map[id.ID]decimal.Decimal{}
	for _, mv := range m.Moves {
		if !mv.Date.Before(at) {
			continue
		}
		if mv.LocationDestID == locationID {
			totals[mv.ProductID] = totals[mv.ProductID].Add(mv.Quantity)
		}
		if mv.LocationID == locationID {
			totals[mv.ProductID] = totals[mv.ProductID].Sub(mv.Quantity)
		}
	}
	out := make([]Balance, 0, len(totals))
	for p, q := range totals {
		if !q.IsZero() {
			out = append(out, Balance{ProductID: p, Quantity: q})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID.String() < out[j].ProductID.String() })
	return out, nil
}

var _ Repository = (*MockRepository)(nil)
