package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/masasa123jp/docshub/internal/auth"
	"github.com/masasa123jp/docshub/internal/metrics"
	"github.com/masasa123jp/docshub/internal/models"
	"github.com/masasa123jp/docshub/internal/store"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned for every authentication failure:
	// unknown username, wrong password, or deactivated account. Callers must
	// not be able to tell the cases apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrMissingSignupField = errors.New("username and email are required")
)

// SignupRequest carries the fields needed to register a new user account
type SignupRequest struct {
	Username string
	Email    string
	Password string
	FullName string
}

// UserService handles account registration and credential verification
type UserService struct {
	store        *store.Store
	auditService *AuditService
	metrics      metrics.Recorder
}

func NewUserService(
	s *store.Store,
	auditService *AuditService,
	recorder metrics.Recorder,
) *UserService {
	return &UserService{
		store:        s,
		auditService: auditService,
		metrics:      recorder,
	}
}

// Signup registers a new local user. Username and email must be unique;
// the password is stored as a bcrypt digest only.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" || email == "" {
		return nil, ErrMissingSignupField
	}
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}

	if _, err := s.store.GetUserByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	}
	if _, err := s.store.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         "user",
		IsActive:     true,
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}

	if s.auditService != nil {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventUserRegistered,
			Severity:     models.SeverityInfo,
			ActorUserID:  user.ID,
			ResourceType: models.ResourceUser,
			ResourceID:   user.ID,
			Action:       "User account registered",
			Details: models.AuditDetails{
				"username": username,
			},
			Success: true,
		})
	}

	log.Printf("[Auth] New user registered: %s", username)
	return user, nil
}

// Authenticate verifies a username/password pair. Every failure mode maps to
// the same ErrInvalidCredentials so responses cannot be used to probe which
// usernames exist.
func (s *UserService) Authenticate(
	ctx context.Context,
	username, password string,
) (*models.User, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		s.recordAuthFailure(ctx, username, "unknown user")
		return nil, ErrInvalidCredentials
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.recordAuthFailure(ctx, username, "wrong password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.recordAuthFailure(ctx, username, "account deactivated")
		return nil, ErrInvalidCredentials
	}

	if s.metrics != nil {
		s.metrics.RecordLogin(true)
	}
	if s.auditService != nil {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:     models.EventAuthenticationSuccess,
			Severity:      models.SeverityInfo,
			ActorUserID:   user.ID,
			ActorUsername: user.Username,
			ResourceType:  models.ResourceUser,
			ResourceID:    user.ID,
			Action:        "User authenticated",
			Success:       true,
		})
	}

	return user, nil
}

func (s *UserService) recordAuthFailure(ctx context.Context, username, reason string) {
	log.Printf("[Auth] Failed for user=%s: %s", username, reason)
	if s.metrics != nil {
		s.metrics.RecordLogin(false)
	}
	if s.auditService != nil {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:     models.EventAuthenticationFailure,
			Severity:      models.SeverityWarning,
			ActorUsername: username,
			ResourceType:  models.ResourceUser,
			Action:        "Authentication failed",
			ErrorMessage:  reason,
			Success:       false,
		})
	}
}

// ChangePassword replaces the stored digest after verifying the current
// password. All other sessions of the user are destroyed.
func (s *UserService) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		return ErrUserNotFound
	}

	if !auth.VerifyPassword(currentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	if err := s.store.UpdateUser(user); err != nil {
		return err
	}

	// Invalidate every login session issued under the old password.
	if err := s.store.DeleteSessionsByUserID(userID); err != nil {
		log.Printf("[Auth] Failed to clear sessions for user=%s: %v", user.Username, err)
	}

	return nil
}

func (s *UserService) GetUserByID(id string) (*models.User, error) {
	user, err := s.store.GetUserByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
