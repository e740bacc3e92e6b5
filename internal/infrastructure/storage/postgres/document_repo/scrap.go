package document_repo

import (
	"context"

	"smeerp/internal/core/id"
	"smeerp/internal/domain/documents/scrap"
)

// ScrapRepo implements scrap.Repository.
type ScrapRepo struct {
	base *BaseDocumentRepo[scrap.Scrap]
}

// NewScrapRepo creates a new scrap repository.
func NewScrapRepo() *ScrapRepo {
	return &ScrapRepo{
		base: NewBaseDocumentRepo[scrap.Scrap]("stock_scrap", "sc", scrap.DocumentType, nil),
	}
}

func (r *ScrapRepo) GetByID(ctx context.Context, scrapID id.ID) (*scrap.Scrap, error) {
	return r.base.GetByID(ctx, scrapID)
}

func (r *ScrapRepo) GetForUpdate(ctx context.Context, scrapID id.ID) (*scrap.Scrap, error) {
	return r.base.GetForUpdate(ctx, scrapID)
}

func (r *ScrapRepo) Update(ctx context.Context, doc *scrap.Scrap) error {
	return r.base.Update(ctx, doc, "name", "date_done", "scrap_location_id", "state", "move_id")
}

var _ scrap.Repository = (*ScrapRepo)(nil)
