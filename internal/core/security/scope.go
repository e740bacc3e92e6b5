// Package security provides authorization and access control.
package security

import (
	"context"
	"fmt"
	"slices"

	"smeerp/internal/core/apperror"
	appctx "smeerp/internal/core/context"
	"smeerp/internal/core/id"
)

// Role is a permission group granted through the JWT.
type Role string

const (
	RoleAdmin Role = "admin"

	// RoleExpenseTeamApprover may approve sheets without an approver list.
	RoleExpenseTeamApprover Role = "expense_team_approver"
	// RoleExpenseUser may approve sheets outside their department.
	RoleExpenseUser Role = "expense_user"
	// RoleExpenseManager skips the own-sheet and department checks.
	RoleExpenseManager Role = "expense_manager"

	RolePurchaseUser Role = "purchase_user"
	RoleStockUser    Role = "stock_user"
)

// AccessScope is the authenticated caller of the current request.
type AccessScope struct {
	UserID       id.ID
	Email        string
	Roles        []Role
	DepartmentID *id.ID
	IsAdmin      bool
}

// NewAccessScope creates AccessScope from context.
// Returns Unauthorized when the request carries no valid user.
func NewAccessScope(ctx context.Context) (*AccessScope, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}

	userID, err := id.Parse(user.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid user id in token").WithCause(err)
	}

	scope := &AccessScope{
		UserID:  userID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}
	for _, r := range user.Roles {
		scope.Roles = append(scope.Roles, Role(r))
	}
	// A malformed department only narrows what the caller may approve.
	scope.DepartmentID, _ = id.ParseOptional(user.DepartmentID)
	return scope, nil
}

// HasRole reports whether the caller has role. Admins have every role.
func (s *AccessScope) HasRole(role Role) bool {
	return s.IsAdmin || slices.Contains(s.Roles, role)
}

// RequireRole returns Forbidden if role is missing.
func (s *AccessScope) RequireRole(role Role) error {
	if !s.HasRole(role) {
		return apperror.NewForbidden(fmt.Sprintf("role %s required", role)).
			WithDetail("role", role)
	}
	return nil
}

// Is reports whether the caller is the given user.
func (s *AccessScope) Is(userID *id.ID) bool {
	return userID != nil && *userID == s.UserID
}

// --- Context-based scope access ---

type scopeKey struct{}

// WithScope adds AccessScope to context.
func WithScope(ctx context.Context, scope *AccessScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns the AccessScope stored in ctx, or builds it from the
// user context.
func GetScope(ctx context.Context) (*AccessScope, error) {
	if v, ok := ctx.Value(scopeKey{}).(*AccessScope); ok {
		return v, nil
	}
	return NewAccessScope(ctx)
}
