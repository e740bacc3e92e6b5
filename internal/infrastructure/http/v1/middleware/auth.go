// Package middleware provides the gin middleware of the v1 API.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"smeerp/internal/core/apperror"
	appctx "smeerp/internal/core/context"
	"smeerp/internal/core/security"
)

// JWTValidator turns a bearer token into the caller.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.UserContext, error)
}

// Auth stores the caller and its access scope in the request context.
// Every failure is a 401; the validator's reason is only logged.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, appErr := bearerToken(c.GetHeader("Authorization"))
		if appErr != nil {
			abort(c, appErr)
			return
		}

		user, err := validator.ValidateToken(token)
		if err != nil {
			abort(c, apperror.NewUnauthorized("invalid token").WithCause(err))
			return
		}

		ctx := appctx.WithUser(c.Request.Context(), user)
		scope, err := security.NewAccessScope(ctx)
		if err != nil {
			abort(c, err)
			return
		}
		c.Request = c.Request.WithContext(security.WithScope(ctx, scope))
		c.Set("user_id", user.UserID)
		c.Next()
	}
}

func bearerToken(header string) (string, *apperror.AppError) {
	if header == "" {
		return "", apperror.NewUnauthorized("missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", apperror.NewUnauthorized("invalid authorization header format")
	}
	return token, nil
}

// RequireRole admits callers holding any of roles. Admins hold every role.
func RequireRole(roles ...security.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, err := security.GetScope(c.Request.Context())
		if err != nil {
			abort(c, err)
			return
		}
		for _, role := range roles {
			if scope.HasRole(role) {
				c.Next()
				return
			}
		}
		abort(c, apperror.NewForbidden("insufficient permissions").WithDetail("required_roles", roles))
	}
}

// abort hands err to ErrorHandler and stops the chain.
func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
