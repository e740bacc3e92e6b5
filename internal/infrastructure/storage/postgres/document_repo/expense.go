package document_repo

import (
	"context"

	"smeerp/internal/core/id"
	"smeerp/internal/domain/documents/expense"
)

// ExpenseSheetRepo implements expense.Repository. The employee's managers
// are resolved through hr_employee and hr_department.
type ExpenseSheetRepo struct {
	base *BaseDocumentRepo[expense.Sheet]
}

// NewExpenseSheetRepo creates a new expense sheet repository.
func NewExpenseSheetRepo() *ExpenseSheetRepo {
	return &ExpenseSheetRepo{
		base: NewBaseDocumentRepo[expense.Sheet]("expense_sheet", "es", expense.DocumentType,
			map[string]string{
				"employee_user_id":           "emp.user_id",
				"expense_manager_id":         "emp.expense_manager_id",
				"parent_user_id":             "parent.user_id",
				"department_id":              "emp.department_id",
				"department_manager_user_id": "dept_manager.user_id",
			},
			"JOIN hr_employee emp ON emp.id = es.employee_id",
			"LEFT JOIN hr_employee parent ON parent.id = emp.parent_id",
			"LEFT JOIN hr_department dept ON dept.id = emp.department_id",
			"LEFT JOIN hr_employee dept_manager ON dept_manager.id = dept.manager_id",
		),
	}
}

func (r *ExpenseSheetRepo) GetByID(ctx context.Context, sheetID id.ID) (*expense.Sheet, error) {
	return r.base.GetByID(ctx, sheetID)
}

func (r *ExpenseSheetRepo) GetForUpdate(ctx context.Context, sheetID id.ID) (*expense.Sheet, error) {
	return r.base.GetForUpdate(ctx, sheetID)
}

func (r *ExpenseSheetRepo) UpdateState(ctx context.Context, sheet *expense.Sheet) error {
	return r.base.Update(ctx, sheet, "state", "responsible_id")
}

var _ expense.Repository = (*ExpenseSheetRepo)(nil)
