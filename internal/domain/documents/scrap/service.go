package scrap

import (
	"context"
	"fmt"
	"time"

	"smeerp/internal/core/apperror"
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

// NumeratorConfig names scraps SP/2026/00001, SP/2026/00002, ...
var NumeratorConfig = numerator.DefaultConfig("scrap", "SP")

// Service provides scrap operations.
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

// NewService creates a new scrap service.
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

// GetByID retrieves a scrap.
func (s *Service) GetByID(ctx context.Context, scrapID id.ID) (*Scrap, error) {
	return s.repo.GetByID(ctx, scrapID)
}

// SetDate backdates a draft scrap.
func (s *Service) SetDate(ctx context.Context, scrapID id.ID, date time.Time) (*Scrap, error) {
	var result *Scrap
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, scrapID)
		if err != nil {
			return err
		}
		old := doc.DateDone
		if err := doc.SetDateDone(date, s.now()); err != nil {
			return err
		}

		audit.Stamp(ctx, &doc.BaseDocument)
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update scrap: %w", err)
		}
		if err := s.audit.Record(ctx, audit.Entry{
			EntityType: DocumentType,
			EntityID:   doc.ID,
			Action:     audit.ActionBackdate,
			Changes:    map[string]any{"date_done": map[string]any{"old": old, "new": doc.DateDone}},
		}); err != nil {
			return fmt.Errorf("audit scrap: %w", err)
		}
		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DoScrap names the scrap, moves the quantity to the scrap location at
// DateDone and values it at the product's standard price.
func (s *Service) DoScrap(ctx context.Context, scrapID id.ID) (*Scrap, error) {
	var result *Scrap
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, scrapID)
		if err != nil {
			return err
		}
		if doc.State != StateDraft {
			return apperror.NewInvalidTransition(DocumentType, string(doc.State), "scrap")
		}
		if err := doc.Validate(); err != nil {
			return err
		}
		if doc.DateDone.IsZero() {
			doc.DateDone = s.now().UTC()
		}
		if err := entity.ValidateNotFuture("date_done", "Date", doc.DateDone, s.now()); err != nil {
			return err
		}

		if doc.ScrapLocationID == nil {
			loc, err := s.locations.DefaultScrap(ctx)
			if err != nil {
				return fmt.Errorf("default scrap location: %w", err)
			}
			doc.ScrapLocationID = &loc.ID
		}
		p, err := s.products.GetByID(ctx, doc.ProductID)
		if err != nil {
			return err
		}

		name, err := s.numerator.GetNextNumber(ctx, NumeratorConfig, numerator.DefaultOptions(), doc.DateDone)
		if err != nil {
			return fmt.Errorf("generate scrap name: %w", err)
		}
		doc.Name = name

		move := entity.NewStockMove(DocumentType, doc.ID, doc.Name, p.ID, doc.LocationID, *doc.ScrapLocationID, doc.Quantity, doc.DateDone)
		move.Origin = doc.Origin
		move.UomID = p.UomID
		if err := s.stock.Record(ctx, []stock.Entry{{Move: move, UnitCost: p.StandardPrice}}); err != nil {
			return err
		}
		doc.MoveID = &move.ID
		doc.State = StateDone

		audit.Stamp(ctx, &doc.BaseDocument)
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update scrap: %w", err)
		}
		if err := s.audit.Record(ctx, audit.Entry{
			EntityType: DocumentType,
			EntityID:   doc.ID,
			Action:     audit.ActionScrap,
			Changes: map[string]any{
				"state":     map[string]any{"old": StateDraft, "new": doc.State},
				"name":      doc.Name,
				"date_done": doc.DateDone,
			},
		}); err != nil {
			return fmt.Errorf("audit scrap: %w", err)
		}
		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "scrap done", "id", result.ID, "name", result.Name, "date_done", result.DateDone)
	return result, nil
}
