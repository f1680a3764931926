package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/masasa123jp/docshub/internal/metrics"
	"github.com/masasa123jp/docshub/internal/models"
	"github.com/masasa123jp/docshub/internal/store"
	"github.com/masasa123jp/docshub/internal/token"
	"github.com/masasa123jp/docshub/internal/util"
)

// TokenService issues signed access tokens and layers the revocation ledger
// on top of signature validation.
type TokenService struct {
	store        *store.Store
	provider     *token.Provider
	auditService *AuditService
	metrics      metrics.Recorder
}

func NewTokenService(
	s *store.Store,
	provider *token.Provider,
	auditService *AuditService,
	recorder metrics.Recorder,
) *TokenService {
	return &TokenService{
		store:        s,
		provider:     provider,
		auditService: auditService,
		metrics:      recorder,
	}
}

// Issue generates an access token from a redeemed authorization code. The
// code's nonce is echoed into the token claims.
func (s *TokenService) Issue(
	ctx context.Context,
	code *models.AuthorizationCode,
) (*token.Result, error) {
	start := time.Now()

	result, err := s.provider.Generate(code.UserID, code.ClientID, code.Scopes, code.Nonce)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTokenIssued("authorization_code", time.Since(start))
	}
	if s.auditService != nil {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventAccessTokenIssued,
			Severity:     models.SeverityInfo,
			ActorUserID:  code.UserID,
			ResourceType: models.ResourceToken,
			ResourceID:   result.Claims.ID,
			Action:       "Access token issued",
			Details: models.AuditDetails{
				"client_id": code.ClientID,
				"scopes":    code.Scopes,
				"expires":   result.ExpiresAt,
			},
			Success: true,
		})
	}

	return result, nil
}

// Verify validates a bearer token: signature and expiry first, then the
// revocation ledger. A revoked token fails with token.ErrTokenRevoked even
// though its signature still checks out.
func (s *TokenService) Verify(
	ctx context.Context,
	tokenString string,
) (*token.ValidationResult, error) {
	start := time.Now()

	result, err := s.provider.Validate(tokenString)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			s.recordValidation("expired", start)
		} else {
			s.recordValidation("invalid", start)
		}
		return nil, err
	}

	revoked, err := s.store.IsTokenRevoked(util.SHA256Hex(tokenString))
	if err != nil {
		s.recordValidation("error", start)
		return nil, fmt.Errorf("revocation check failed: %w", err)
	}
	if revoked {
		s.recordValidation("revoked", start)
		return nil, token.ErrTokenRevoked
	}

	s.recordValidation("valid", start)
	return result, nil
}

// Revoke adds the token to the revocation ledger. Tokens that do not parse or
// have already expired need no ledger entry; in every case the caller sees
// success, so revocation never leaks whether the token was live (RFC 7009).
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	result, err := s.provider.Validate(tokenString)
	if err != nil {
		return nil
	}

	expiresAt := result.ExpiresAt
	if expiresAt.IsZero() {
		// No exp claim; keep the ledger entry around for a day.
		expiresAt = time.Now().Add(24 * time.Hour)
	}

	if err := s.store.RevokeToken(util.SHA256Hex(tokenString), expiresAt); err != nil {
		return fmt.Errorf("failed to record revocation: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTokenRevoked()
	}
	if s.auditService != nil {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventTokenRevoked,
			Severity:     models.SeverityInfo,
			ActorUserID:  result.UserID,
			ResourceType: models.ResourceToken,
			ResourceID:   result.Claims.ID,
			Action:       "Access token revoked",
			Details: models.AuditDetails{
				"client_id": result.ClientID,
			},
			Success: true,
		})
	}

	return nil
}

func (s *TokenService) recordValidation(result string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordTokenValidation(result, time.Since(start))
	}
}
