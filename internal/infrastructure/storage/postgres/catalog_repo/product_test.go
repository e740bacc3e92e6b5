package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smeerp/internal/core/id"
)

func TestProductRepo_Columns(t *testing.T) {
	r := NewProductRepo()
	assert.Equal(t,
		[]string{"id", "default_code", "name", "active", "standard_price", "uom_id"},
		r.cols)
}

func TestFindByIDsQuery(t *testing.T) {
	r := NewProductRepo()
	a, b := id.New(), id.New()

	sql, args, err := findByIDsQuery(r.selectAll(), []id.ID{a, b}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, default_code, name, active, standard_price, uom_id FROM product "+
			"WHERE id IN ($1,$2) ORDER BY default_code, name, id",
		sql)
	assert.NotContains(t, sql, "active =", "archived products are included")
	assert.Equal(t, []any{a, b}, args)
}

func TestLocationRepo_Columns(t *testing.T) {
	r := NewLocationRepo()
	assert.Equal(t,
		[]string{"id", "name", "complete_name", "usage", "scrap_location"},
		r.cols)
}
