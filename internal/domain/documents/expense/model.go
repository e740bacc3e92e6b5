// Package expense provides expense sheets and their approval rules.
package expense

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
	"smeerp/internal/core/security"
	"smeerp/internal/domain/approval"
)

// DocumentType tags expense sheets in approvers, audit and outbox rows.
const DocumentType = "expense_sheet"

// State is the sheet lifecycle.
type State string

const (
	StateDraft   State = "draft"
	StateSubmit  State = "submit"
	StateApprove State = "approve"
	StatePost    State = "post"
	StateDone    State = "done"
	StateCancel  State = "cancel"
)

// Employee is the sheet's employee and the people who manage them.
type Employee struct {
	EmployeeID              id.ID  `db:"employee_id" json:"employeeId"`
	EmployeeUserID          *id.ID `db:"employee_user_id" json:"employeeUserId,omitempty"`
	ExpenseManagerID        *id.ID `db:"expense_manager_id" json:"expenseManagerId,omitempty"`
	ParentUserID            *id.ID `db:"parent_user_id" json:"parentUserId,omitempty"`
	DepartmentID            *id.ID `db:"department_id" json:"departmentId,omitempty"`
	DepartmentManagerUserID *id.ID `db:"department_manager_user_id" json:"departmentManagerUserId,omitempty"`
}

// Sheet is an expense report.
type Sheet struct {
	entity.Document
	Employee

	State State `db:"state" json:"state"`

	// ResponsibleID is the manager in charge; set on approval when empty.
	ResponsibleID *id.ID `db:"responsible_id" json:"responsibleId,omitempty"`

	TotalAmount  decimal.Decimal `db:"total_amount" json:"totalAmount"`
	CurrencyCode string          `db:"currency_code" json:"currencyCode"`

	Approvers approval.Approvers `db:"-" json:"approvers"`
}

func (s *Sheet) approvalDocument() approval.Document {
	return approval.Document{Type: DocumentType, ID: s.ID, Name: s.Name, OwnerID: s.OwnerID}
}

// currentManagers are the users who may review the sheet without the
// expense_user role.
func (s *Sheet) currentManagers() []id.ID {
	var out []id.ID
	for _, m := range []*id.ID{s.ExpenseManagerID, s.ParentUserID, s.DepartmentManagerUserID} {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out
}

// checkReviewer applies the manager rules used when the caller reviews
// the sheet outside an approver list. verb is "approve" or "refuse".
func (s *Sheet) checkReviewer(scope *security.AccessScope, verb string) error {
	if !scope.HasRole(security.RoleExpenseTeamApprover) {
		return apperror.NewForbidden("Only Managers and HR Officers can approve expenses")
	}
	if scope.HasRole(security.RoleExpenseManager) {
		return nil
	}
	if scope.Is(s.EmployeeUserID) {
		return apperror.NewDenied(apperror.CodeOwnExpense, fmt.Sprintf("You cannot %s your own expenses", verb))
	}
	if !slices.Contains(s.currentManagers(), scope.UserID) && !scope.HasRole(security.RoleExpenseUser) {
		return apperror.NewDenied(apperror.CodeDepartmentMismatch,
			fmt.Sprintf("You can only %s your department expenses", verb))
	}
	return nil
}

// reviewerToNotify picks the manager who reviews sheets without approvers.
func (s *Sheet) reviewerToNotify() *id.ID {
	switch {
	case s.ExpenseManagerID != nil:
		return s.ExpenseManagerID
	case s.ParentUserID != nil:
		return s.ParentUserID
	default:
		return s.DepartmentManagerUserID
	}
}

// markApproved moves the sheet to approve, keeping an existing responsible.
func (s *Sheet) markApproved(caller id.ID) {
	s.State = StateApprove
	if s.ResponsibleID == nil {
		s.ResponsibleID = &caller
	}
}

func (s *Sheet) requireState(action string, allowed ...State) error {
	if !slices.Contains(allowed, s.State) {
		return apperror.NewInvalidTransition(DocumentType, string(s.State), action)
	}
	return nil
}
