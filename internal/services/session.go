package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/masasa123jp/docshub/internal/config"
	"github.com/masasa123jp/docshub/internal/metrics"
	"github.com/masasa123jp/docshub/internal/models"
	"github.com/masasa123jp/docshub/internal/store"
	"github.com/masasa123jp/docshub/internal/util"
)

// ErrSessionInvalid is returned when a session ID is unknown, expired, or
// belongs to a deactivated account.
var ErrSessionInvalid = errors.New("session invalid or expired")

// SessionService manages server-side login sessions. The browser only ever
// holds the opaque SID; all session state lives in the sessions table.
type SessionService struct {
	store        *store.Store
	config       *config.Config
	auditService *AuditService
	metrics      metrics.Recorder
}

func NewSessionService(
	s *store.Store,
	cfg *config.Config,
	auditService *AuditService,
	recorder metrics.Recorder,
) *SessionService {
	return &SessionService{
		store:        s,
		config:       cfg,
		auditService: auditService,
		metrics:      recorder,
	}
}

// Login creates a fresh session row for the user and returns it. The SID is
// 256 bits from crypto/rand, minted anew on every login and never reused.
func (s *SessionService) Login(ctx context.Context, user *models.User) (*models.Session, error) {
	sid, err := util.CryptoRandomString(64)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	session := &models.Session{
		SID:       sid,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.config.SessionExpiration),
	}

	if err := s.store.CreateSession(session); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate resolves a SID to its user. Expired sessions are deleted lazily on
// first sight rather than waiting for the background sweep.
func (s *SessionService) Validate(ctx context.Context, sid string) (*models.User, error) {
	if sid == "" {
		s.recordValidation("invalid")
		return nil, ErrSessionInvalid
	}

	session, err := s.store.GetSession(sid)
	if err != nil {
		s.recordValidation("invalid")
		return nil, ErrSessionInvalid
	}

	if session.IsExpired() {
		if err := s.store.DeleteSession(sid); err != nil {
			log.Printf("[Session] Failed to delete expired session: %v", err)
		}
		s.recordValidation("expired")
		return nil, ErrSessionInvalid
	}

	user, err := s.store.GetUserByID(session.UserID)
	if err != nil || !user.IsActive {
		s.recordValidation("invalid")
		return nil, ErrSessionInvalid
	}

	s.recordValidation("valid")
	return user, nil
}

// Destroy removes the session row. Destroying an unknown or already-destroyed
// SID succeeds; logout is idempotent.
func (s *SessionService) Destroy(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}

	// Best-effort actor lookup for the audit trail before the row goes away.
	var userID string
	if session, err := s.store.GetSession(sid); err == nil {
		userID = session.UserID
	}

	if err := s.store.DeleteSession(sid); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordLogout()
	}
	if s.auditService != nil && userID != "" {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventLogout,
			Severity:     models.SeverityInfo,
			ActorUserID:  userID,
			ResourceType: models.ResourceSession,
			ResourceID:   sid,
			Action:       "User logged out",
			Success:      true,
		})
	}

	return nil
}

// DestroyAllForUser removes every session belonging to the user
func (s *SessionService) DestroyAllForUser(userID string) error {
	return s.store.DeleteSessionsByUserID(userID)
}

func (s *SessionService) recordValidation(result string) {
	if s.metrics != nil {
		s.metrics.RecordSessionValidation(result)
	}
}
