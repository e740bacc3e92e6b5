package document_repo

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
	"smeerp/internal/domain/documents/expense"
	"smeerp/internal/domain/documents/scrap"
)

func TestExpenseSheetSelect_ResolvesManagers(t *testing.T) {
	repo := NewExpenseSheetRepo()
	sheetID := id.New()

	sql, args, err := repo.base.byID(sheetID, true).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "SELECT es.id, es.version, "), sql)
	assert.Contains(t, sql, "es.employee_id, emp.user_id AS employee_user_id, emp.expense_manager_id AS expense_manager_id")
	assert.Contains(t, sql, "parent.user_id AS parent_user_id")
	assert.Contains(t, sql, "dept_manager.user_id AS department_manager_user_id")
	assert.Contains(t, sql, "FROM expense_sheet es JOIN hr_employee emp ON emp.id = es.employee_id")
	assert.NotContains(t, sql, "approvers")
	assert.True(t, strings.HasSuffix(sql, "WHERE es.id = $1 FOR UPDATE OF es"), sql)
	assert.Equal(t, []any{sheetID}, args)
}

func TestUpdateQuery_OptimisticLock(t *testing.T) {
	repo := NewScrapRepo()
	doc := &scrap.Scrap{Document: entity.NewDocument(id.New()), Quantity: decimal.NewFromInt(1), State: scrap.StateDone}
	doc.Name = "SP/2026/00003"
	doc.Stamp("u-1", time.Now())

	sql, args, err := repo.base.updateQuery(doc, "name", "state")
	require.NoError(t, err)

	assert.Equal(t, "UPDATE stock_scrap SET name = $1, state = $2, updated_at = $3, updated_by = $4, version = $5 WHERE id = $6 AND version = $7", sql)
	require.Len(t, args, 7)
	assert.Equal(t, "SP/2026/00003", args[0])
	assert.Equal(t, scrap.StateDone, args[1])
	assert.Equal(t, "u-1", args[3])
	assert.Equal(t, 2, args[4])
	assert.Equal(t, doc.ID, args[5])
	assert.Equal(t, 1, args[6])
}

func TestUpdateQuery_UnknownColumn(t *testing.T) {
	repo := NewExpenseSheetRepo()
	sheet := &expense.Sheet{Document: entity.NewDocument(id.New())}

	_, _, err := repo.base.updateQuery(sheet, "no_such_column")
	assert.Error(t, err)
}
