package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/masasa123jp/docshub/internal/config"
	"github.com/masasa123jp/docshub/internal/metrics"
	"github.com/masasa123jp/docshub/internal/models"
	"github.com/masasa123jp/docshub/internal/store"
	"github.com/masasa123jp/docshub/internal/util"
)

// Authorization code flow errors. The external error codes follow RFC 6749;
// every redemption failure collapses to ErrInvalidGrant so a caller cannot
// distinguish unknown, expired, consumed, and wrong-client codes.
var (
	ErrInvalidAuthRequest      = errors.New("invalid_request")
	ErrUnsupportedResponseType = errors.New("unsupported_response_type")
	ErrUnauthorizedClient      = errors.New("unauthorized_client")
	ErrInvalidScope            = errors.New("invalid_scope")
	ErrRedirectURIMismatch     = errors.New("redirect_uri does not match registration")
	ErrInvalidGrant            = errors.New("invalid_grant")
)

// AuthorizationRequest holds the validated parameters of an authorization
// request, carried through login and consent until the code is issued.
type AuthorizationRequest struct {
	Client      *models.Client
	RedirectURI string
	Scopes      string
	State       string
	Nonce       string
}

// AuthorizationService manages the OAuth 2.0 authorization code flow (RFC 6749)
type AuthorizationService struct {
	store         *store.Store
	config        *config.Config
	clientService *ClientService
	auditService  *AuditService
	metrics       metrics.Recorder
}

func NewAuthorizationService(
	s *store.Store,
	cfg *config.Config,
	clientService *ClientService,
	auditService *AuditService,
	recorder metrics.Recorder,
) *AuthorizationService {
	return &AuthorizationService{
		store:         s,
		config:        cfg,
		clientService: clientService,
		auditService:  auditService,
		metrics:       recorder,
	}
}

// ValidateAuthorizationRequest checks every parameter of an incoming
// authorization request and returns the parsed request on success. All six
// parameters are mandatory, including state and nonce.
func (s *AuthorizationService) ValidateAuthorizationRequest(
	ctx context.Context,
	responseType, clientID, redirectURI, scope, state, nonce string,
) (*AuthorizationRequest, error) {
	if responseType == "" || clientID == "" || redirectURI == "" ||
		scope == "" || state == "" || nonce == "" {
		return nil, ErrInvalidAuthRequest
	}

	client, err := s.clientService.Lookup(ctx, clientID)
	if err != nil {
		return nil, ErrUnauthorizedClient
	}

	// Byte-for-byte comparison against the registered URI. No prefix or
	// normalization matching. Client and redirect binding are checked before
	// anything else: past this point errors may be reported by redirecting
	// to the client.
	if redirectURI != client.RedirectURI {
		return nil, ErrRedirectURIMismatch
	}

	if responseType != "code" {
		return nil, ErrUnsupportedResponseType
	}

	if !scopeSubset(client.Scopes, scope) {
		return nil, ErrInvalidScope
	}

	return &AuthorizationRequest{
		Client:      client,
		RedirectURI: redirectURI,
		Scopes:      scope,
		State:       state,
		Nonce:       nonce,
	}, nil
}

// IssueCode mints a single-use authorization code for the user after consent.
// Only the SHA-256 hash is stored; the plaintext goes into the redirect and
// is never seen again server-side.
func (s *AuthorizationService) IssueCode(
	ctx context.Context,
	req *AuthorizationRequest,
	userID string,
) (string, error) {
	rawBytes, err := util.CryptoRandomBytes(32)
	if err != nil {
		s.recordCodeIssued(false)
		return "", fmt.Errorf("failed to generate authorization code: %w", err)
	}
	plainCode := hex.EncodeToString(rawBytes)

	record := &models.AuthorizationCode{
		CodeHash:    util.SHA256Hex(plainCode),
		ClientID:    req.Client.ClientID,
		UserID:      userID,
		RedirectURI: req.RedirectURI,
		Scopes:      req.Scopes,
		Nonce:       req.Nonce,
		ExpiresAt:   time.Now().Add(s.config.AuthCodeExpiration),
	}

	if err := s.store.CreateAuthorizationCode(record); err != nil {
		s.recordCodeIssued(false)
		return "", fmt.Errorf("failed to save authorization code: %w", err)
	}

	s.recordCodeIssued(true)
	if s.auditService != nil {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventAuthorizationCodeGenerated,
			Severity:     models.SeverityInfo,
			ActorUserID:  userID,
			ResourceType: models.ResourceAuthorization,
			ResourceID:   req.Client.ClientID,
			Action:       "Authorization code generated",
			Details: models.AuditDetails{
				"client_id":    req.Client.ClientID,
				"scopes":       req.Scopes,
				"redirect_uri": req.RedirectURI,
			},
			Success: true,
		})
	}

	return plainCode, nil
}

// RedeemCode validates a plaintext code and consumes it. The conditional
// delete in the store is the single arbiter under concurrency: when N
// exchanges race on the same code, exactly one succeeds and the rest get
// ErrInvalidGrant.
func (s *AuthorizationService) RedeemCode(
	ctx context.Context,
	plainCode, clientID, redirectURI string,
) (*models.AuthorizationCode, error) {
	codeHash := util.SHA256Hex(plainCode)

	record, err := s.store.GetAuthorizationCodeByHash(codeHash)
	if err != nil {
		s.recordRedemption("unknown")
		return nil, ErrInvalidGrant
	}

	if record.ClientID != clientID {
		s.recordRedemption("client_mismatch")
		return nil, ErrInvalidGrant
	}
	// redirect_uri was already pinned at authorize time, so the exchange may
	// omit it; when present it must match exactly.
	if redirectURI != "" && record.RedirectURI != redirectURI {
		s.recordRedemption("redirect_mismatch")
		return nil, ErrInvalidGrant
	}
	if record.IsExpired() {
		// Consume the stale row so it cannot linger until the sweep.
		_ = s.store.ConsumeAuthorizationCode(codeHash)
		s.recordRedemption("expired")
		return nil, ErrInvalidGrant
	}

	if err := s.store.ConsumeAuthorizationCode(codeHash); err != nil {
		if errors.Is(err, store.ErrCodeConsumed) {
			s.recordRedemption("replayed")
			return nil, ErrInvalidGrant
		}
		s.recordRedemption("error")
		return nil, fmt.Errorf("failed to consume authorization code: %w", err)
	}

	s.recordRedemption("success")
	if s.auditService != nil {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventAuthorizationCodeExchanged,
			Severity:     models.SeverityInfo,
			ActorUserID:  record.UserID,
			ResourceType: models.ResourceAuthorization,
			ResourceID:   record.ClientID,
			Action:       "Authorization code exchanged for token",
			Details: models.AuditDetails{
				"client_id": clientID,
				"scopes":    record.Scopes,
			},
			Success: true,
		})
	}

	return record, nil
}

// RecordDenied logs the user declining the consent prompt
func (s *AuthorizationService) RecordDenied(
	ctx context.Context,
	req *AuthorizationRequest,
	userID string,
) {
	if s.auditService == nil {
		return
	}
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventAuthorizationCodeDenied,
		Severity:     models.SeverityInfo,
		ActorUserID:  userID,
		ResourceType: models.ResourceAuthorization,
		ResourceID:   req.Client.ClientID,
		Action:       "User denied authorization request",
		Details: models.AuditDetails{
			"client_id": req.Client.ClientID,
			"scopes":    req.Scopes,
		},
		Success: false,
	})
}

func (s *AuthorizationService) recordCodeIssued(success bool) {
	if s.metrics != nil {
		s.metrics.RecordCodeIssued(success)
	}
}

func (s *AuthorizationService) recordRedemption(result string) {
	if s.metrics != nil {
		s.metrics.RecordCodeRedemption(result)
	}
}

// scopeSubset reports whether every requested scope is in the allowed set
func scopeSubset(allowedScopes, requestedScopes string) bool {
	allowed := make(map[string]bool)
	for _, sc := range strings.Fields(allowedScopes) {
		allowed[sc] = true
	}
	for _, sc := range strings.Fields(requestedScopes) {
		if !allowed[sc] {
			return false
		}
	}
	return true
}
