package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smeerp/internal/core/apperror"
	appctx "smeerp/internal/core/context"
	"smeerp/internal/core/id"
)

func TestGetScope(t *testing.T) {
	userID := id.New()
	dep := id.New()

	t.Run("from user context", func(t *testing.T) {
		ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
			UserID:       userID.String(),
			Roles:        []string{"expense_user"},
			DepartmentID: dep.String(),
		})
		scope, err := GetScope(ctx)
		require.NoError(t, err)
		assert.Equal(t, userID, scope.UserID)
		require.NotNil(t, scope.DepartmentID)
		assert.Equal(t, dep, *scope.DepartmentID)
		assert.True(t, scope.HasRole(RoleExpenseUser))
		assert.False(t, scope.HasRole(RoleExpenseManager))
		assert.True(t, scope.Is(&userID))
		assert.False(t, scope.Is(nil))
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := GetScope(context.Background())
		assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	})

	t.Run("malformed user id", func(t *testing.T) {
		ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "42"})
		_, err := GetScope(ctx)
		assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	})

	t.Run("stored scope wins", func(t *testing.T) {
		stored := &AccessScope{UserID: userID, IsAdmin: true}
		scope, err := GetScope(WithScope(context.Background(), stored))
		require.NoError(t, err)
		assert.Same(t, stored, scope)
		assert.NoError(t, scope.RequireRole(RoleExpenseManager))
	})
}

func TestRequireRole(t *testing.T) {
	scope := &AccessScope{UserID: id.New(), Roles: []Role{RoleStockUser}}
	assert.NoError(t, scope.RequireRole(RoleStockUser))

	err := scope.RequireRole(RolePurchaseUser)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}
