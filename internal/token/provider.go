package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/masasa123jp/docshub/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Provider generates and validates HS256-signed JWT access tokens with the
// server-held symmetric key. Revocation is layered on top by the token
// service; the provider itself is pure signature and expiry checking.
type Provider struct {
	config *config.Config
}

// NewProvider creates a new token provider
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{config: cfg}
}

// Generate creates a signed access token for the user/client pair. The nonce
// from the authorization request is echoed into the claims when present.
func (p *Provider) Generate(userID, clientID, scope, nonce string) (*Result, error) {
	now := time.Now()
	expiresAt := now.Add(p.config.TokenExpiration)

	claims := &Claims{
		ClientID: clientID,
		Scope:    scope,
		Nonce:    nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    p.config.BaseURL,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(p.config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	return &Result{
		TokenString: tokenString,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
		Claims:      claims,
	}, nil
}

// Validate verifies the token signature and expiry and returns its claims
func (p *Provider) Validate(tokenString string) (*ValidationResult, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(p.config.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &ValidationResult{
		UserID:    claims.Subject,
		ClientID:  claims.ClientID,
		Scopes:    claims.Scope,
		Nonce:     claims.Nonce,
		ExpiresAt: expiresAt,
		Claims:    claims,
	}, nil
}
