package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
)

type testDoc struct {
	entity.Document
	LocationID id.ID           `db:"location_id"`
	Quantity   decimal.Decimal `db:"scrap_qty"`
	Lines      []string        `db:"-"`
	scratch    int
}

func TestExtractDBColumns_Embedded(t *testing.T) {
	cols := ExtractDBColumns[testDoc]()

	assert.Equal(t, []string{
		"id", "version", "created_at", "updated_at", "created_by", "updated_by",
		"name", "owner_id", "location_id", "scrap_qty",
	}, cols)
}

func TestStructToMap(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	doc := testDoc{
		Document:   entity.NewDocument(id.New()),
		LocationID: id.New(),
		Quantity:   decimal.NewFromInt(3),
		Lines:      []string{"ignored"},
		scratch:    1,
	}
	doc.Name = "SP/2026/00001"
	doc.Version = 4
	doc.UpdatedAt = now

	m := StructToMap(&doc)

	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, 4, m["version"])
	assert.Equal(t, now, m["updated_at"])
	assert.Equal(t, "SP/2026/00001", m["name"])
	assert.Equal(t, doc.OwnerID, m["owner_id"])
	assert.Equal(t, doc.LocationID, m["location_id"])
	assert.Len(t, m, 10)

	assert.Nil(t, StructToMap((*testDoc)(nil)))
	assert.Nil(t, StructToMap(42))
}
