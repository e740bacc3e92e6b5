package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
	"smeerp/pkg/logger"
)

// Entry is a move to record with its valuation. Incoming moves bring
// stock into the company; the rest take it out.
type Entry struct {
	Move     entity.StockMove
	UnitCost decimal.Decimal
	Incoming bool
}

// Service provides business logic for the stock register.
type Service struct {
	repo Repository
}

// NewService creates a new stock service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record writes the moves and one valuation layer per move. Layers are
// dated with their move so backdated documents value in their period.
// Must run inside the caller's transaction.
func (s *Service) Record(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	moves := make([]entity.StockMove, 0, len(entries))
	layers := make([]entity.ValuationLayer, 0, len(entries))
	for _, e := range entries {
		if !e.Move.Quantity.IsPositive() {
			return apperror.NewValidation("move quantity must be positive").
				WithDetail("productId", e.Move.ProductID)
		}
		moves = append(moves, e.Move)
		layers = append(layers, valuationLayer(e))
	}

	if err := s.repo.CreateMoves(ctx, moves); err != nil {
		return fmt.Errorf("create moves: %w", err)
	}
	if err := s.repo.CreateValuationLayers(ctx, layers); err != nil {
		return fmt.Errorf("create valuation layers: %w", err)
	}

	logger.Debug(ctx, "stock moves recorded", "count", len(moves), "recorder", moves[0].RecorderType)
	return nil
}

func valuationLayer(e Entry) entity.ValuationLayer {
	qty := e.Move.Quantity
	if !e.Incoming {
		qty = qty.Neg()
	}
	return entity.ValuationLayer{
		ID:          id.New(),
		StockMoveID: e.Move.ID,
		ProductID:   e.Move.ProductID,
		Quantity:    qty,
		UnitCost:    e.UnitCost,
		Value:       qty.Mul(e.UnitCost),
		CreatedAt:   e.Move.Date,
	}
}

// LocationStock returns the quantities held in location at the given time.
func (s *Service) LocationStock(ctx context.Context, locationID id.ID, at time.Time) ([]Balance, error) {
	balances, err := s.repo.BalancesAt(ctx, locationID, at)
	if err != nil {
		return nil, fmt.Errorf("location stock: %w", err)
	}
	return balances, nil
}
