package inventory

import (
	"context"
	"fmt"
	"time"

	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
	"smeerp/internal/core/numerator"
	"smeerp/internal/core/tx"
	"smeerp/internal/domain/audit"
	"smeerp/internal/domain/catalogs/location"
	"smeerp/internal/domain/catalogs/product"
	"smeerp/internal/domain/registers/stock"
	"smeerp/pkg/logger"
)

// NumeratorConfig names validated adjustments without a name.
var NumeratorConfig = numerator.DefaultConfig("inventory", "INV")

// Service provides business operations for inventory documents.
type Service struct {
	repo      Repository
	stock     *stock.Service
	products  product.Repository
	locations location.Repository
	numerator numerator.Generator
	audit     audit.Recorder
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates a new inventory service.
func NewService(
	repo Repository,
	stockService *stock.Service,
	products product.Repository,
	locations location.Repository,
	gen numerator.Generator,
	recorder audit.Recorder,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		stock:     stockService,
		products:  products,
		locations: locations,
		numerator: gen,
		audit:     recorder,
		txManager: txManager,
		now:       time.Now,
	}
}

// GetByID retrieves an inventory with its lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Inventory, error) {
	return s.repo.GetByID(ctx, docID)
}

type step func(ctx context.Context, inv *Inventory) (map[string]any, error)

func (s *Service) mutate(ctx context.Context, docID id.ID, action audit.Action, fn step) (*Inventory, error) {
	var result *Inventory
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		from := inv.State
		changes, err := fn(ctx, inv)
		if err != nil {
			return err
		}

		audit.Stamp(ctx, &inv.BaseDocument)
		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update inventory: %w", err)
		}

		if changes == nil {
			changes = map[string]any{}
		}
		if from != inv.State {
			changes["state"] = map[string]any{"old": from, "new": inv.State}
		}
		if err := s.audit.Record(ctx, audit.Entry{
			EntityType: DocumentType,
			EntityID:   inv.ID,
			Action:     action,
			Changes:    changes,
		}); err != nil {
			return fmt.Errorf("audit inventory: %w", err)
		}

		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetDate backdates a draft adjustment.
func (s *Service) SetDate(ctx context.Context, docID id.ID, date time.Time) (*Inventory, error) {
	return s.mutate(ctx, docID, audit.ActionBackdate, func(_ context.Context, inv *Inventory) (map[string]any, error) {
		old := inv.Date
		if err := inv.SetDate(date, s.now()); err != nil {
			return nil, err
		}
		return map[string]any{"date": map[string]any{"old": old, "new": inv.Date}}, nil
	})
}

// Start confirms the adjustment. The chosen date is kept; lines are
// prefilled from current stock unless the inventory starts empty or
// already has lines.
func (s *Service) Start(ctx context.Context, docID id.ID) (*Inventory, error) {
	inv, err := s.mutate(ctx, docID, audit.ActionConfirm, func(ctx context.Context, inv *Inventory) (map[string]any, error) {
		if err := inv.requireState("start", StateDraft); err != nil {
			return nil, err
		}
		if inv.Date.IsZero() {
			inv.Date = s.now().UTC()
		}

		if len(inv.Lines) == 0 && !inv.StartEmpty {
			balances, err := s.stock.LocationStock(ctx, inv.LocationID, s.now().UTC())
			if err != nil {
				return nil, err
			}
			lines := make([]Line, 0, len(balances))
			for _, b := range balances {
				lines = append(lines, Line{
					ID:             id.New(),
					InventoryID:    inv.ID,
					ProductID:      b.ProductID,
					TheoreticalQty: b.Quantity,
					ProductQty:     b.Quantity,
				})
			}
			if err := s.repo.CreateLines(ctx, lines); err != nil {
				return nil, fmt.Errorf("create inventory lines: %w", err)
			}
			inv.Lines = lines
		}

		inv.State = StateConfirm
		return map[string]any{"lines": len(inv.Lines)}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inventory started", "id", inv.ID, "date", inv.Date, "lines", len(inv.Lines))
	return inv, nil
}

// Validate records one move per counted difference, dated at the
// inventory date. Surplus comes from the inventory loss location and
// shortage goes back to it.
func (s *Service) Validate(ctx context.Context, docID id.ID) (*Inventory, error) {
	inv, err := s.mutate(ctx, docID, audit.ActionValidate, func(ctx context.Context, inv *Inventory) (map[string]any, error) {
		if err := inv.requireState("validate", StateConfirm); err != nil {
			return nil, err
		}
		if err := entity.ValidateNotFuture("date", "Inventory Date", inv.Date, s.now()); err != nil {
			return nil, err
		}
		if inv.Name == "" {
			name, err := s.numerator.GetNextNumber(ctx, NumeratorConfig, numerator.DefaultOptions(), inv.Date)
			if err != nil {
				return nil, fmt.Errorf("generate inventory name: %w", err)
			}
			inv.Name = name
		}

		entries, err := s.adjustments(ctx, inv)
		if err != nil {
			return nil, err
		}
		if err := s.stock.Record(ctx, entries); err != nil {
			return nil, err
		}

		inv.State = StateDone
		return map[string]any{"moves": len(entries)}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inventory validated", "id", inv.ID, "name", inv.Name, "date", inv.Date)
	return inv, nil
}

func (s *Service) adjustments(ctx context.Context, inv *Inventory) ([]stock.Entry, error) {
	var loss *location.Location
	var entries []stock.Entry
	for _, line := range inv.Lines {
		diff := line.Difference()
		if diff.IsZero() {
			continue
		}
		if loss == nil {
			var err error
			if loss, err = s.locations.DefaultInventoryLoss(ctx); err != nil {
				return nil, fmt.Errorf("inventory loss location: %w", err)
			}
		}
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}

		from, to, incoming := loss.ID, inv.LocationID, true
		if diff.IsNegative() {
			from, to, incoming = inv.LocationID, loss.ID, false
		}
		entries = append(entries, stock.Entry{
			Move:     entity.NewStockMove(DocumentType, inv.ID, inv.Name, p.ID, from, to, diff.Abs(), inv.Date),
			UnitCost: p.StandardPrice,
			Incoming: incoming,
		})
	}
	return entries, nil
}
