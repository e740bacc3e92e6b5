package purchase

import (
	"context"
	"fmt"
	"time"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
	"smeerp/internal/core/security"
	"smeerp/internal/core/tx"
	"smeerp/internal/domain/approval"
	"smeerp/internal/domain/audit"
	"smeerp/pkg/logger"
)

// Service provides purchase order confirmation and approval.
type Service struct {
	repo      Repository
	flow      *approval.Flow
	audit     audit.Recorder
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates a new purchase service.
func NewService(repo Repository, flow *approval.Flow, recorder audit.Recorder, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		flow:      flow,
		audit:     recorder,
		txManager: txManager,
		now:       time.Now,
	}
}

// GetByID retrieves an order with its approvers.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Approvers, err = s.flow.Approvers(ctx, order.approvalDocument()); err != nil {
		return nil, err
	}
	return order, nil
}

type transition func(ctx context.Context, order *Order, scope *security.AccessScope) (map[string]any, error)

func (s *Service) mutate(ctx context.Context, orderID id.ID, action audit.Action, fn transition) (*Order, error) {
	scope, err := security.GetScope(ctx)
	if err != nil {
		return nil, err
	}

	var result *Order
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Approvers, err = s.flow.Approvers(ctx, order.approvalDocument()); err != nil {
			return err
		}

		from := order.State
		changes, err := fn(ctx, order, scope)
		if err != nil {
			return err
		}

		audit.Stamp(ctx, &order.BaseDocument)
		if err := s.repo.UpdateState(ctx, order); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}

		if changes == nil {
			changes = map[string]any{}
		}
		changes["state"] = map[string]any{"old": from, "new": order.State}
		if err := s.audit.Record(ctx, audit.Entry{
			EntityType: DocumentType,
			EntityID:   order.ID,
			Action:     action,
			Changes:    changes,
		}); err != nil {
			return fmt.Errorf("audit purchase order: %w", err)
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order transition", "id", result.ID, "action", action, "state", result.State)
	return result, nil
}

// Confirm sends an RFQ for approval. Without approvers the order is
// approved at once.
func (s *Service) Confirm(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.mutate(ctx, orderID, audit.ActionConfirm, func(ctx context.Context, order *Order, _ *security.AccessScope) (map[string]any, error) {
		if err := order.requireState("confirm", StateDraft, StateSent); err != nil {
			return nil, err
		}
		if len(order.Approvers) == 0 {
			order.approve(s.now().UTC())
			return nil, nil
		}

		if _, err := s.flow.Request(ctx, order.approvalDocument(), order.Approvers); err != nil {
			return nil, err
		}
		order.State = StateToApprove
		return nil, nil
	})
}

// Approve records the caller's approval; the last one turns the RFQ into
// a purchase order.
func (s *Service) Approve(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.mutate(ctx, orderID, audit.ActionApprove, func(ctx context.Context, order *Order, scope *security.AccessScope) (map[string]any, error) {
		a, err := s.decide(ctx, order, scope, "approve", approval.StatusApproved, "")
		if err != nil {
			return nil, err
		}
		if order.Approvers.AllIn(approval.StatusApproved) {
			order.approve(s.now().UTC())
		}
		return map[string]any{"approver": a.UserID}, nil
	})
}

// Refuse records the caller's refusal; the order is cancelled once every
// approver refused.
func (s *Service) Refuse(ctx context.Context, orderID id.ID, reason string) (*Order, error) {
	return s.mutate(ctx, orderID, audit.ActionRefuse, func(ctx context.Context, order *Order, scope *security.AccessScope) (map[string]any, error) {
		a, err := s.decide(ctx, order, scope, "refuse", approval.StatusRefused, reason)
		if err != nil {
			return nil, err
		}
		if order.Approvers.AllIn(approval.StatusRefused) {
			order.State = StateCancel
		}
		return map[string]any{"approver": a.UserID, "reason": reason}, nil
	})
}

func (s *Service) decide(ctx context.Context, order *Order, scope *security.AccessScope, action string, status approval.Status, note string) (*approval.Approver, error) {
	if err := order.requireState(action, StateToApprove); err != nil {
		return nil, err
	}
	a := order.Approvers.ForUser(scope.UserID)
	if a == nil {
		return nil, apperror.NewDenied(apperror.CodeNotAnApprover, "You are not an approver of this purchase order")
	}
	if err := s.flow.Decide(ctx, order.approvalDocument(), a, status, note); err != nil {
		return nil, err
	}
	return a, nil
}

// AddApprover adds userID to the order's approvers. Orders already waiting
// for approval ask the new approver right away.
func (s *Service) AddApprover(ctx context.Context, orderID, userID id.ID) (*approval.Approver, error) {
	var added *approval.Approver
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.requireState("add approver to", StateDraft, StateSent, StateToApprove); err != nil {
			return err
		}

		doc := order.approvalDocument()
		if added, err = s.flow.AddApprover(ctx, doc, userID); err != nil {
			return err
		}
		if order.State == StateToApprove {
			_, err = s.flow.Request(ctx, doc, approval.Approvers{added})
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}
