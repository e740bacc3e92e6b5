package expense

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smeerp/internal/core/apperror"
	appctx "smeerp/internal/core/context"
	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
	"smeerp/internal/core/security"
	"smeerp/internal/core/tx"
	"smeerp/internal/domain"
	"smeerp/internal/domain/approval"
	"smeerp/internal/domain/audit"
)

type fakeRepo struct {
	sheets  map[id.ID]*Sheet
	updates int
}

func (f *fakeRepo) GetByID(_ context.Context, sheetID id.ID) (*Sheet, error) {
	s, ok := f.sheets[sheetID]
	if !ok {
		return nil, apperror.NewNotFound(DocumentType, sheetID)
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, sheetID id.ID) (*Sheet, error) {
	return f.GetByID(ctx, sheetID)
}

func (f *fakeRepo) UpdateState(_ context.Context, sheet *Sheet) error {
	f.updates++
	cp := *sheet
	f.sheets[sheet.ID] = &cp
	return nil
}

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	approvers *approval.MockRepository
	events    *domain.MockPublisher
	audit     *audit.MockRecorder
	sheet     *Sheet
	employee  id.ID // the employee's user
	manager   id.ID // department manager user
}

func newFixture(state State) *fixture {
	f := &fixture{
		repo:      &fakeRepo{sheets: map[id.ID]*Sheet{}},
		approvers: &approval.MockRepository{},
		events:    &domain.MockPublisher{},
		audit:     &audit.MockRecorder{},
		employee:  id.New(),
		manager:   id.New(),
	}
	f.svc = NewService(f.repo, approval.NewFlow(f.approvers, f.events), f.audit, &tx.MockManager{})

	f.sheet = &Sheet{
		Document: entity.NewDocument(f.employee),
		Employee: Employee{
			EmployeeID:              id.New(),
			EmployeeUserID:          &f.employee,
			DepartmentManagerUserID: &f.manager,
		},
		State: state,
	}
	f.sheet.Name = "EXP/0001"
	f.repo.sheets[f.sheet.ID] = f.sheet
	return f
}

func as(userID id.ID, roles ...security.Role) context.Context {
	return security.WithScope(context.Background(), &security.AccessScope{UserID: userID, Roles: roles})
}

func (f *fixture) stored() *Sheet {
	return f.repo.sheets[f.sheet.ID]
}

func TestSubmit(t *testing.T) {
	t.Run("asks pending approvers", func(t *testing.T) {
		f := newFixture(StateDraft)
		f.approvers.Seed(DocumentType, f.sheet.ID, approval.StatusDraft, id.New(), id.New())

		sheet, err := f.svc.Submit(as(f.employee), f.sheet.ID)
		require.NoError(t, err)
		assert.Equal(t, StateSubmit, sheet.State)
		assert.Len(t, f.events.OfType(approval.EventRequested), 2)
		for _, a := range sheet.Approvers {
			assert.Equal(t, approval.StatusToApprove, a.Status)
		}
		require.NotNil(t, f.audit.Last())
		assert.Equal(t, audit.ActionSubmit, f.audit.Last().Action)
	})

	t.Run("without approvers notifies the manager", func(t *testing.T) {
		f := newFixture(StateDraft)
		_, err := f.svc.Submit(as(f.employee), f.sheet.ID)
		require.NoError(t, err)

		requested := f.events.OfType(approval.EventRequested)
		require.Len(t, requested, 1)
		assert.Equal(t, f.manager, requested[0].Payload.(approval.Activity).UserID)
	})

	t.Run("only drafts", func(t *testing.T) {
		f := newFixture(StateApprove)
		_, err := f.svc.Submit(as(f.employee), f.sheet.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
		assert.Zero(t, f.repo.updates)
	})
}

func TestApprove_WithApprovers(t *testing.T) {
	f := newFixture(StateSubmit)
	first, second := id.New(), id.New()
	f.approvers.Seed(DocumentType, f.sheet.ID, approval.StatusToApprove, first, second)

	_, err := f.svc.Approve(as(id.New(), security.RoleExpenseManager), f.sheet.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotAnApprover), "managers outside the list are rejected")

	sheet, err := f.svc.Approve(as(first), f.sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSubmit, sheet.State, "one approval of two")
	assert.Len(t, f.events.OfType(approval.EventDone), 1)

	sheet, err = f.svc.Approve(as(second), f.sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, StateApprove, sheet.State)
	require.NotNil(t, sheet.ResponsibleID)
	assert.Equal(t, second, *sheet.ResponsibleID)
	assert.Equal(t, StateApprove, f.stored().State)
}

func TestApprove_KeepsExistingResponsible(t *testing.T) {
	f := newFixture(StateSubmit)
	responsible := id.New()
	f.sheet.ResponsibleID = &responsible
	approver := id.New()
	f.approvers.Seed(DocumentType, f.sheet.ID, approval.StatusToApprove, approver)

	sheet, err := f.svc.Approve(as(approver), f.sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, responsible, *sheet.ResponsibleID)
}

func TestApprove_ManagerRules(t *testing.T) {
	tests := []struct {
		name     string
		caller   func(f *fixture) context.Context
		wantCode string
	}{
		{
			name:     "team approver role required",
			caller:   func(f *fixture) context.Context { return as(f.manager) },
			wantCode: apperror.CodeForbidden,
		},
		{
			name: "own sheet",
			caller: func(f *fixture) context.Context {
				return as(f.employee, security.RoleExpenseTeamApprover, security.RoleExpenseUser)
			},
			wantCode: apperror.CodeOwnExpense,
		},
		{
			name:     "other department",
			caller:   func(f *fixture) context.Context { return as(id.New(), security.RoleExpenseTeamApprover) },
			wantCode: apperror.CodeDepartmentMismatch,
		},
		{
			name:   "department manager",
			caller: func(f *fixture) context.Context { return as(f.manager, security.RoleExpenseTeamApprover) },
		},
		{
			name: "expense user outside the department",
			caller: func(f *fixture) context.Context {
				return as(id.New(), security.RoleExpenseTeamApprover, security.RoleExpenseUser)
			},
		},
		{
			name: "expense manager may approve own sheet",
			caller: func(f *fixture) context.Context {
				return as(f.employee, security.RoleExpenseTeamApprover, security.RoleExpenseManager)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(StateSubmit)
			sheet, err := f.svc.Approve(tt.caller(f), f.sheet.ID)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, tt.wantCode), "got %v", err)
				assert.Equal(t, StateSubmit, f.stored().State)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StateApprove, sheet.State)
			assert.Len(t, f.events.OfType(approval.EventDone), 1)
		})
	}
}

func TestApprove_MessageWording(t *testing.T) {
	f := newFixture(StateSubmit)
	_, err := f.svc.Approve(as(f.employee, security.RoleExpenseTeamApprover), f.sheet.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "You cannot approve your own expenses", appErr.Message)

	_, err = f.svc.Refuse(as(f.employee, security.RoleExpenseTeamApprover), f.sheet.ID, "no receipt")
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "You cannot refuse your own expenses", appErr.Message)
}

func TestRefuse(t *testing.T) {
	t.Run("all approvers refuse", func(t *testing.T) {
		f := newFixture(StateSubmit)
		first, second := id.New(), id.New()
		f.approvers.Seed(DocumentType, f.sheet.ID, approval.StatusToApprove, first, second)

		sheet, err := f.svc.Refuse(as(first), f.sheet.ID, "duplicate")
		require.NoError(t, err)
		assert.Equal(t, StateSubmit, sheet.State)

		sheet, err = f.svc.Refuse(as(second), f.sheet.ID, "duplicate")
		require.NoError(t, err)
		assert.Equal(t, StateCancel, sheet.State)

		entry := f.audit.Last()
		require.NotNil(t, entry)
		assert.Equal(t, audit.ActionRefuse, entry.Action)
		assert.Equal(t, "duplicate", entry.Changes["reason"])
	})

	t.Run("manager refuses directly", func(t *testing.T) {
		f := newFixture(StateSubmit)
		sheet, err := f.svc.Refuse(as(f.manager, security.RoleExpenseTeamApprover), f.sheet.ID, "policy")
		require.NoError(t, err)
		assert.Equal(t, StateCancel, sheet.State)

		done := f.events.OfType(approval.EventDone)
		require.Len(t, done, 1)
		activity := done[0].Payload.(approval.Activity)
		assert.Equal(t, f.employee, activity.UserID)
		assert.Equal(t, "policy", activity.Note)
	})

	t.Run("reason required", func(t *testing.T) {
		f := newFixture(StateSubmit)
		_, err := f.svc.Refuse(as(f.manager, security.RoleExpenseTeamApprover), f.sheet.ID, "  ")
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})
}

func TestAddApprover(t *testing.T) {
	f := newFixture(StateSubmit)
	userID := id.New()

	added, err := f.svc.AddApprover(as(f.manager), f.sheet.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusToApprove, added.Status, "submitted sheets ask new approvers at once")
	assert.Len(t, f.events.OfType(approval.EventRequested), 1)

	_, err = f.svc.AddApprover(as(f.manager), f.sheet.ID, f.employee)
	assert.True(t, apperror.HasCode(err, apperror.CodeOwnDocument))
}

func TestGetByID_Anonymous(t *testing.T) {
	f := newFixture(StateSubmit)
	sheet, err := f.svc.GetByID(context.Background(), f.sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, f.sheet.ID, sheet.ID)

	_, err = f.svc.Approve(appctx.WithUser(context.Background(), &appctx.UserContext{}), f.sheet.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}
