package scrap

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
	"smeerp/internal/core/numerator"
	"smeerp/internal/core/tx"
	"smeerp/internal/domain/audit"
	"smeerp/internal/domain/catalogs/location"
	"smeerp/internal/domain/catalogs/product"
	"smeerp/internal/domain/registers/stock"
)

type memScraps map[id.ID]*Scrap

func (m memScraps) GetByID(_ context.Context, scrapID id.ID) (*Scrap, error) {
	s, ok := m[scrapID]
	if !ok {
		return nil, apperror.NewNotFound(DocumentType, scrapID)
	}
	cp := *s
	return &cp, nil
}

func (m memScraps) GetForUpdate(ctx context.Context, scrapID id.ID) (*Scrap, error) {
	return m.GetByID(ctx, scrapID)
}

func (m memScraps) Update(_ context.Context, doc *Scrap) error {
	cp := *doc
	m[doc.ID] = &cp
	return nil
}

var (
	fixedNow  = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	backdated = time.Date(2026, 10, 2, 8, 30, 0, 0, time.UTC)
)

type fixture struct {
	svc      *Service
	docs     memScraps
	register *stock.MockRepository
	gen      *numerator.MockGenerator
	recorder *audit.MockRecorder
	shelf    *location.Location
	scrapLoc *location.Location
	widget   *product.Product
}

func newFixture() *fixture {
	f := &fixture{
		docs:     memScraps{},
		register: &stock.MockRepository{},
		gen:      &numerator.MockGenerator{},
		recorder: &audit.MockRecorder{},
		shelf:    &location.Location{ID: id.New(), Name: "Stock", Usage: location.UsageInternal},
		scrapLoc: &location.Location{ID: id.New(), Name: "Scrap", Usage: location.UsageInventory, ScrapLocation: true},
		widget:   &product.Product{ID: id.New(), Name: "Widget", Active: true, StandardPrice: decimal.RequireFromString("4.25")},
	}
	f.svc = NewService(
		f.docs,
		stock.NewService(f.register),
		&product.MockRepository{Items: []*product.Product{f.widget}},
		&location.MockRepository{Items: []*location.Location{f.shelf, f.scrapLoc}},
		f.gen,
		f.recorder,
		&tx.MockManager{},
	)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) draft(qty int64) *Scrap {
	doc := &Scrap{
		Document:   entity.NewDocument(id.New()),
		ProductID:  f.widget.ID,
		Quantity:   decimal.NewFromInt(qty),
		LocationID: f.shelf.ID,
		Origin:     "WH/OUT/00042",
		State:      StateDraft,
	}
	f.docs[doc.ID] = doc
	return doc
}

func TestSetDate(t *testing.T) {
	f := newFixture()
	doc := f.draft(2)

	got, err := f.svc.SetDate(context.Background(), doc.ID, backdated)
	require.NoError(t, err)
	assert.Equal(t, backdated, got.DateDone)
	assert.Equal(t, audit.ActionBackdate, f.recorder.Last().Action)

	_, err = f.svc.SetDate(context.Background(), doc.ID, fixedNow.Add(time.Hour))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBackdateInFuture, appErr.Code)
	assert.Equal(t, "Date must be earlier than the current date", appErr.Message)
	assert.Equal(t, backdated, f.docs[doc.ID].DateDone)
}

func TestDoScrap_MovesAndValuesAtDateDone(t *testing.T) {
	f := newFixture()
	doc := f.draft(2)
	doc.DateDone = backdated

	got, err := f.svc.DoScrap(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StateDone, got.State)
	assert.Equal(t, "SP/00001", got.Name)
	require.NotNil(t, got.ScrapLocationID)
	assert.Equal(t, f.scrapLoc.ID, *got.ScrapLocationID)

	require.Len(t, f.register.Moves, 1)
	move := f.register.Moves[0]
	assert.Equal(t, f.shelf.ID, move.LocationID)
	assert.Equal(t, f.scrapLoc.ID, move.LocationDestID)
	assert.Equal(t, backdated, move.Date)
	assert.Equal(t, "SP/00001", move.Reference)
	assert.Equal(t, "WH/OUT/00042", move.Origin)
	require.NotNil(t, got.MoveID)
	assert.Equal(t, move.ID, *got.MoveID)

	require.Len(t, f.register.Layers, 1)
	layer := f.register.Layers[0]
	assert.True(t, layer.Quantity.Equal(decimal.NewFromInt(-2)))
	assert.True(t, layer.Value.Equal(decimal.RequireFromString("-8.5")))
	assert.Equal(t, backdated, layer.CreatedAt)

	assert.Equal(t, audit.ActionScrap, f.recorder.Last().Action)
	assert.Equal(t, StateDone, f.docs[doc.ID].State)
}

func TestDoScrap_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(f *fixture, doc *Scrap)
		wantCode string
	}{
		{
			name:     "already done",
			prepare:  func(_ *fixture, doc *Scrap) { doc.State = StateDone },
			wantCode: apperror.CodeInvalidTransition,
		},
		{
			name:     "zero quantity",
			prepare:  func(_ *fixture, doc *Scrap) { doc.Quantity = decimal.Zero },
			wantCode: apperror.CodeValidation,
		},
		{
			name:     "date in the future",
			prepare:  func(_ *fixture, doc *Scrap) { doc.DateDone = fixedNow.AddDate(0, 0, 1) },
			wantCode: apperror.CodeBackdateInFuture,
		},
		{
			name: "unknown product",
			prepare: func(_ *fixture, doc *Scrap) {
				doc.ProductID = id.New()
				doc.DateDone = backdated
			},
			wantCode: apperror.CodeNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			doc := f.draft(1)
			tt.prepare(f, doc)

			_, err := f.svc.DoScrap(context.Background(), doc.ID)
			assert.True(t, apperror.HasCode(err, tt.wantCode), "got %v", err)
			assert.Empty(t, f.register.Moves)
			assert.Empty(t, f.recorder.Entries)
		})
	}
}

func TestDoScrap_DefaultsDateToNow(t *testing.T) {
	f := newFixture()
	doc := f.draft(1)

	got, err := f.svc.DoScrap(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, got.DateDone)
}
