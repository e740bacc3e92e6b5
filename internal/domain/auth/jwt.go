// Package auth validates the bearer tokens that carry the caller's
// identity and roles. Tokens are issued by the identity provider with a
// shared HS256 secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "smeerp/internal/core/context"
)

// clockSkew tolerated between the identity provider and this service.
const clockSkew = 30 * time.Second

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret string
	Issuer string

	// AccessTokenTTL only applies to tokens signed here.
	AccessTokenTTL time.Duration
}

func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "smeerp",
		AccessTokenTTL: 15 * time.Minute,
	}
}

// Claims is the token payload. The user id travels both as sub and uid;
// uid wins when both are set.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string   `json:"uid,omitempty"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	DepartmentID string   `json:"dept,omitempty"`
	IsAdmin      bool     `json:"adm,omitempty"`
}

func (c *Claims) user() (*appctx.UserContext, error) {
	userID := c.UserID
	if userID == "" {
		userID = c.Subject
	}
	if userID == "" {
		return nil, errors.New("token has no subject")
	}
	return &appctx.UserContext{
		UserID:       userID,
		Email:        c.Email,
		Roles:        c.Roles,
		DepartmentID: c.DepartmentID,
		IsAdmin:      c.IsAdmin,
	}, nil
}

// JWTService verifies tokens. The parser is built once and only accepts
// HS256 tokens from the configured issuer that carry an expiry.
type JWTService struct {
	config JWTConfig
	parser *jwt.Parser
}

func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(config.Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
	}
}

// ValidateToken returns the caller carried by tokenString.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	var claims Claims
	_, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims.user()
}

// GenerateAccessToken signs a token for user. Tests and local tooling use
// it; deployed clients get tokens from the identity provider.
func (s *JWTService) GenerateAccessToken(user appctx.UserContext) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:        user.Email,
		Roles:        user.Roles,
		DepartmentID: user.DepartmentID,
		IsAdmin:      user.IsAdmin,
	})
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}
