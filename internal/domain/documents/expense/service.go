package expense

import (
	"context"
	"fmt"
	"strings"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
	"smeerp/internal/core/security"
	"smeerp/internal/core/tx"
	"smeerp/internal/domain/approval"
	"smeerp/internal/domain/audit"
	"smeerp/pkg/logger"
)

// Service provides expense sheet workflow operations.
type Service struct {
	repo      Repository
	flow      *approval.Flow
	audit     audit.Recorder
	txManager tx.Manager
}

// NewService creates a new expense service.
func NewService(repo Repository, flow *approval.Flow, recorder audit.Recorder, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		flow:      flow,
		audit:     recorder,
		txManager: txManager,
	}
}

// GetByID retrieves a sheet with its approvers.
func (s *Service) GetByID(ctx context.Context, sheetID id.ID) (*Sheet, error) {
	sheet, err := s.repo.GetByID(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if sheet.Approvers, err = s.flow.Approvers(ctx, sheet.approvalDocument()); err != nil {
		return nil, err
	}
	return sheet, nil
}

// mutate loads the sheet for update inside a transaction, runs fn and
// saves the result.
func (s *Service) mutate(ctx context.Context, sheetID id.ID, action audit.Action, fn func(ctx context.Context, sheet *Sheet, scope *security.AccessScope) (map[string]any, error)) (*Sheet, error) {
	scope, err := security.GetScope(ctx)
	if err != nil {
		return nil, err
	}

	var result *Sheet
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sheet, err := s.repo.GetForUpdate(ctx, sheetID)
		if err != nil {
			return err
		}
		if sheet.Approvers, err = s.flow.Approvers(ctx, sheet.approvalDocument()); err != nil {
			return err
		}

		from := sheet.State
		changes, err := fn(ctx, sheet, scope)
		if err != nil {
			return err
		}

		audit.Stamp(ctx, &sheet.BaseDocument)
		if err := s.repo.UpdateState(ctx, sheet); err != nil {
			return fmt.Errorf("update expense sheet: %w", err)
		}

		if changes == nil {
			changes = map[string]any{}
		}
		changes["state"] = map[string]any{"old": from, "new": sheet.State}
		if err := s.audit.Record(ctx, audit.Entry{
			EntityType: DocumentType,
			EntityID:   sheet.ID,
			Action:     action,
			Changes:    changes,
		}); err != nil {
			return fmt.Errorf("audit expense sheet: %w", err)
		}

		result = sheet
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "expense sheet transition",
		"id", result.ID,
		"action", action,
		"state", result.State,
	)
	return result, nil
}

// Submit sends the sheet for approval and asks every pending approver.
// Without approvers the responsible manager is notified instead.
func (s *Service) Submit(ctx context.Context, sheetID id.ID) (*Sheet, error) {
	return s.mutate(ctx, sheetID, audit.ActionSubmit, func(ctx context.Context, sheet *Sheet, _ *security.AccessScope) (map[string]any, error) {
		if err := sheet.requireState("submit", StateDraft); err != nil {
			return nil, err
		}
		sheet.State = StateSubmit

		doc := sheet.approvalDocument()
		asked, err := s.flow.Request(ctx, doc, sheet.Approvers)
		if err != nil {
			return nil, err
		}
		if len(asked) == 0 {
			if manager := sheet.reviewerToNotify(); manager != nil {
				if err := s.flow.Notify(ctx, doc, approval.EventRequested, *manager, approval.StatusToApprove, ""); err != nil {
					return nil, err
				}
			}
		}
		return nil, nil
	})
}

// Approve records the caller's approval. With an approver list the sheet
// is approved once every approver agreed; otherwise the caller must pass
// the manager checks.
func (s *Service) Approve(ctx context.Context, sheetID id.ID) (*Sheet, error) {
	return s.mutate(ctx, sheetID, audit.ActionApprove, func(ctx context.Context, sheet *Sheet, scope *security.AccessScope) (map[string]any, error) {
		if err := sheet.requireState("approve", StateSubmit); err != nil {
			return nil, err
		}
		doc := sheet.approvalDocument()

		if len(sheet.Approvers) > 0 {
			a := sheet.Approvers.ForUser(scope.UserID)
			if a == nil {
				return nil, apperror.NewDenied(apperror.CodeNotAnApprover, "You are not an approver of this expense report")
			}
			if err := s.flow.Decide(ctx, doc, a, approval.StatusApproved, ""); err != nil {
				return nil, err
			}
			if sheet.Approvers.AllIn(approval.StatusApproved) {
				sheet.markApproved(scope.UserID)
			}
			return map[string]any{"approver": scope.UserID}, nil
		}

		if err := sheet.checkReviewer(scope, "approve"); err != nil {
			return nil, err
		}
		sheet.markApproved(scope.UserID)
		if err := s.flow.Notify(ctx, doc, approval.EventDone, sheet.OwnerID, approval.StatusApproved, ""); err != nil {
			return nil, err
		}
		return map[string]any{"reviewer": scope.UserID}, nil
	})
}

// Refuse records a refusal with reason. An approver's refusal cancels the
// sheet once every approver refused; any other caller must pass the
// manager checks and cancels it directly.
func (s *Service) Refuse(ctx context.Context, sheetID id.ID, reason string) (*Sheet, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.NewValidation("refusal reason is required").WithDetail("field", "reason")
	}

	return s.mutate(ctx, sheetID, audit.ActionRefuse, func(ctx context.Context, sheet *Sheet, scope *security.AccessScope) (map[string]any, error) {
		if err := sheet.requireState("refuse", StateSubmit, StateApprove); err != nil {
			return nil, err
		}
		doc := sheet.approvalDocument()
		changes := map[string]any{"reason": reason}

		if a := sheet.Approvers.ForUser(scope.UserID); a != nil {
			if err := s.flow.Decide(ctx, doc, a, approval.StatusRefused, reason); err != nil {
				return nil, err
			}
			if sheet.Approvers.AllIn(approval.StatusRefused) {
				sheet.State = StateCancel
			}
			changes["approver"] = scope.UserID
			return changes, nil
		}

		if err := sheet.checkReviewer(scope, "refuse"); err != nil {
			return nil, err
		}
		sheet.State = StateCancel
		if err := s.flow.Notify(ctx, doc, approval.EventDone, sheet.OwnerID, approval.StatusRefused, reason); err != nil {
			return nil, err
		}
		changes["reviewer"] = scope.UserID
		return changes, nil
	})
}

// AddApprover adds userID to the sheet's approvers. A sheet already
// waiting for approval asks the new approver right away.
func (s *Service) AddApprover(ctx context.Context, sheetID, userID id.ID) (*approval.Approver, error) {
	var added *approval.Approver
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sheet, err := s.repo.GetForUpdate(ctx, sheetID)
		if err != nil {
			return err
		}
		if err := sheet.requireState("add approver to", StateDraft, StateSubmit); err != nil {
			return err
		}

		doc := sheet.approvalDocument()
		if added, err = s.flow.AddApprover(ctx, doc, userID); err != nil {
			return err
		}
		if sheet.State == StateSubmit {
			_, err = s.flow.Request(ctx, doc, approval.Approvers{added})
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}
