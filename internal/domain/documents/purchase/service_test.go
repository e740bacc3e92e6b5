package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/entity"
	"smeerp/internal/core/id"
	"smeerp/internal/core/security"
	"smeerp/internal/core/tx"
	"smeerp/internal/domain"
	"smeerp/internal/domain/approval"
	"smeerp/internal/domain/audit"
)

type memOrders map[id.ID]*Order

func (m memOrders) GetByID(_ context.Context, orderID id.ID) (*Order, error) {
	o, ok := m[orderID]
	if !ok {
		return nil, apperror.NewNotFound(DocumentType, orderID)
	}
	cp := *o
	return &cp, nil
}

func (m memOrders) GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error) {
	return m.GetByID(ctx, orderID)
}

func (m memOrders) UpdateState(_ context.Context, order *Order) error {
	cp := *order
	m[order.ID] = &cp
	return nil
}

var fixedNow = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func setup(state State) (*Service, memOrders, *approval.MockRepository, *domain.MockPublisher, *Order) {
	orders := memOrders{}
	approvers := &approval.MockRepository{}
	events := &domain.MockPublisher{}
	svc := NewService(orders, approval.NewFlow(approvers, events), &audit.MockRecorder{}, &tx.MockManager{})
	svc.now = func() time.Time { return fixedNow }

	order := &Order{Document: entity.NewDocument(id.New()), PartnerID: id.New(), State: state}
	order.Name = "P00001"
	orders[order.ID] = order
	return svc, orders, approvers, events, order
}

func caller(userID id.ID) context.Context {
	return security.WithScope(context.Background(), &security.AccessScope{UserID: userID})
}

func TestConfirm_WithoutApproversApprovesAtOnce(t *testing.T) {
	svc, orders, _, events, order := setup(StateDraft)

	got, err := svc.Confirm(caller(order.OwnerID), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatePurchase, got.State)
	require.NotNil(t, got.DateApprove)
	assert.Equal(t, fixedNow, *got.DateApprove)
	assert.Equal(t, StatePurchase, orders[order.ID].State)
	assert.Empty(t, events.Events)
}

func TestConfirm_RequestsApprovers(t *testing.T) {
	svc, orders, approvers, events, order := setup(StateSent)
	seeded := approvers.Seed(DocumentType, order.ID, approval.StatusDraft, id.New(), id.New())

	got, err := svc.Confirm(caller(order.OwnerID), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StateToApprove, got.State)
	assert.Equal(t, StateToApprove, orders[order.ID].State)
	for _, a := range seeded {
		assert.Equal(t, approval.StatusToApprove, a.Status)
	}
	assert.Len(t, events.OfType(approval.EventRequested), 2)

	_, err = svc.Confirm(caller(order.OwnerID), order.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
}

func TestApprove_AllApproversMakePurchase(t *testing.T) {
	svc, _, approvers, _, order := setup(StateToApprove)
	first, second := id.New(), id.New()
	approvers.Seed(DocumentType, order.ID, approval.StatusToApprove, first, second)

	_, err := svc.Approve(caller(id.New()), order.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotAnApprover))

	got, err := svc.Approve(caller(first), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StateToApprove, got.State)
	assert.Nil(t, got.DateApprove)

	got, err = svc.Approve(caller(second), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatePurchase, got.State)
	assert.NotNil(t, got.DateApprove)
}

func TestRefuse_AllApproversCancel(t *testing.T) {
	svc, _, approvers, events, order := setup(StateToApprove)
	first, second := id.New(), id.New()
	approvers.Seed(DocumentType, order.ID, approval.StatusToApprove, first, second)

	got, err := svc.Refuse(caller(first), order.ID, "price too high")
	require.NoError(t, err)
	assert.Equal(t, StateToApprove, got.State)

	got, err = svc.Refuse(caller(second), order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, StateCancel, got.State)

	done := events.OfType(approval.EventDone)
	require.Len(t, done, 2)
	assert.Equal(t, "price too high", done[0].Payload.(approval.Activity).Note)
}

func TestRefuse_MixedDecisionsStayPending(t *testing.T) {
	svc, _, approvers, _, order := setup(StateToApprove)
	first, second := id.New(), id.New()
	approvers.Seed(DocumentType, order.ID, approval.StatusToApprove, first, second)

	_, err := svc.Approve(caller(first), order.ID)
	require.NoError(t, err)
	got, err := svc.Refuse(caller(second), order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, StateToApprove, got.State)
}

func TestAddApprover_Order(t *testing.T) {
	svc, _, _, events, order := setup(StateDraft)

	a, err := svc.AddApprover(caller(order.OwnerID), order.ID, id.New())
	require.NoError(t, err)
	assert.Equal(t, approval.StatusDraft, a.Status)
	assert.Empty(t, events.Events)

	_, err = svc.AddApprover(caller(order.OwnerID), order.ID, order.OwnerID)
	assert.True(t, apperror.HasCode(err, apperror.CodeOwnDocument))

	got, err := svc.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Approvers, 1)
}
