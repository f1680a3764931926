package services

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/masasa123jp/docshub/internal/cache"
	"github.com/masasa123jp/docshub/internal/metrics"
	"github.com/masasa123jp/docshub/internal/models"
	"github.com/masasa123jp/docshub/internal/store"

	"github.com/google/uuid"
)

var (
	ErrClientNotFound           = errors.New("client not found")
	ErrInvalidClientCredentials = errors.New("invalid client credentials")
	ErrInvalidRedirectURI       = errors.New("redirect_uri must be an absolute URL")
	ErrClientNameRequired       = errors.New("client_name is required")
)

const defaultClientScopes = "openid profile"

// CreateClientRequest holds the fields for registering a relying application
type CreateClientRequest struct {
	ClientName  string
	RedirectURI string
	Scopes      string
}

// ClientResponse is the registration result returned to the owner.
// ClientSecretPlain is populated exactly once, at creation or rotation;
// afterwards only the bcrypt digest exists.
type ClientResponse struct {
	ClientID          string    `json:"client_id"`
	ClientSecretPlain string    `json:"client_secret,omitempty"`
	ClientName        string    `json:"client_name"`
	RedirectURI       string    `json:"redirect_uri"`
	Scopes            string    `json:"scopes"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}

// ClientService manages the relying-application registry. Lookups on the hot
// authorization path go through a cache-aside layer; every mutation
// invalidates the cached entry before returning.
type ClientService struct {
	store        *store.Store
	cache        cache.Cache[models.Client]
	cacheTTL     time.Duration
	auditService *AuditService
	metrics      metrics.Recorder
}

func NewClientService(
	s *store.Store,
	c cache.Cache[models.Client],
	cacheTTL time.Duration,
	auditService *AuditService,
	recorder metrics.Recorder,
) *ClientService {
	return &ClientService{
		store:        s,
		cache:        c,
		cacheTTL:     cacheTTL,
		auditService: auditService,
		metrics:      recorder,
	}
}

func clientCacheKey(clientID string) string {
	return "client:" + clientID
}

// Register creates a new client owned by the given user. The plaintext secret
// in the response is shown once and cannot be retrieved again.
func (s *ClientService) Register(
	ctx context.Context,
	ownerID string,
	req CreateClientRequest,
) (*ClientResponse, error) {
	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		return nil, ErrClientNameRequired
	}
	if !isAbsoluteURL(req.RedirectURI) {
		return nil, ErrInvalidRedirectURI
	}

	scopes := strings.TrimSpace(req.Scopes)
	if scopes == "" {
		scopes = defaultClientScopes
	}

	client := &models.Client{
		ClientID:    uuid.New().String(),
		ClientName:  name,
		RedirectURI: req.RedirectURI,
		Scopes:      scopes,
		OwnerID:     ownerID,
		IsActive:    true,
	}

	plainSecret, err := client.GenerateClientSecret()
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateClient(client); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordClientRegistered()
	}
	if s.auditService != nil {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventClientCreated,
			Severity:     models.SeverityInfo,
			ActorUserID:  ownerID,
			ResourceType: models.ResourceClient,
			ResourceID:   client.ClientID,
			Action:       "Client registered",
			Details: models.AuditDetails{
				"client_name":  name,
				"redirect_uri": req.RedirectURI,
				"scopes":       scopes,
			},
			Success: true,
		})
	}

	return &ClientResponse{
		ClientID:          client.ClientID,
		ClientSecretPlain: plainSecret,
		ClientName:        client.ClientName,
		RedirectURI:       client.RedirectURI,
		Scopes:            client.Scopes,
		IsActive:          client.IsActive,
		CreatedAt:         client.CreatedAt,
	}, nil
}

// Lookup resolves an active client by its public identifier, serving from
// cache when possible. Unknown and deactivated clients are indistinguishable
// to the caller.
func (s *ClientService) Lookup(ctx context.Context, clientID string) (*models.Client, error) {
	if clientID == "" {
		return nil, ErrClientNotFound
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, clientCacheKey(clientID)); err == nil {
			return &cached, nil
		}
	}

	client, err := s.store.GetClient(clientID)
	if err != nil || !client.IsActive {
		return nil, ErrClientNotFound
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, clientCacheKey(clientID), *client, s.cacheTTL); err != nil {
			log.Printf("[Client] Cache set failed for %s: %v", clientID, err)
		}
	}

	return client, nil
}

// VerifySecret authenticates a client by id/secret pair. Failures are uniform
// regardless of whether the client exists.
func (s *ClientService) VerifySecret(
	ctx context.Context,
	clientID, clientSecret string,
) (*models.Client, error) {
	if clientSecret == "" {
		return nil, ErrInvalidClientCredentials
	}

	client, err := s.Lookup(ctx, clientID)
	if err != nil {
		return nil, ErrInvalidClientCredentials
	}

	if !client.ValidateClientSecret([]byte(clientSecret)) {
		return nil, ErrInvalidClientCredentials
	}

	return client, nil
}

// ListByOwner returns all clients registered by the user, active or not
func (s *ClientService) ListByOwner(ownerID string) ([]ClientResponse, error) {
	clients, err := s.store.ListClientsByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	responses := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		responses = append(responses, ClientResponse{
			ClientID:    c.ClientID,
			ClientName:  c.ClientName,
			RedirectURI: c.RedirectURI,
			Scopes:      c.Scopes,
			IsActive:    c.IsActive,
			CreatedAt:   c.CreatedAt,
		})
	}
	return responses, nil
}

// Deactivate disables a client. Only the owner may deactivate it. Codes and
// tokens already issued keep working until they expire; new authorization
// requests are refused immediately.
func (s *ClientService) Deactivate(ctx context.Context, ownerID, clientID string) error {
	client, err := s.getOwnedClient(ownerID, clientID)
	if err != nil {
		return err
	}

	client.IsActive = false
	if err := s.store.UpdateClient(client); err != nil {
		return err
	}
	s.invalidate(ctx, clientID)

	if s.auditService != nil {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventClientDeactivated,
			Severity:     models.SeverityWarning,
			ActorUserID:  ownerID,
			ResourceType: models.ResourceClient,
			ResourceID:   clientID,
			Action:       "Client deactivated",
			Success:      true,
		})
	}

	return nil
}

// RotateSecret regenerates the client secret and returns the new plaintext.
// The previous secret stops working immediately.
func (s *ClientService) RotateSecret(
	ctx context.Context,
	ownerID, clientID string,
) (*ClientResponse, error) {
	client, err := s.getOwnedClient(ownerID, clientID)
	if err != nil {
		return nil, err
	}

	plainSecret, err := client.GenerateClientSecret()
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateClient(client); err != nil {
		return nil, err
	}
	s.invalidate(ctx, clientID)

	if s.auditService != nil {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventClientSecretRegenerated,
			Severity:     models.SeverityWarning,
			ActorUserID:  ownerID,
			ResourceType: models.ResourceClient,
			ResourceID:   clientID,
			Action:       "Client secret regenerated",
			Success:      true,
		})
	}

	return &ClientResponse{
		ClientID:          client.ClientID,
		ClientSecretPlain: plainSecret,
		ClientName:        client.ClientName,
		RedirectURI:       client.RedirectURI,
		Scopes:            client.Scopes,
		IsActive:          client.IsActive,
		CreatedAt:         client.CreatedAt,
	}, nil
}

func (s *ClientService) getOwnedClient(ownerID, clientID string) (*models.Client, error) {
	client, err := s.store.GetClient(clientID)
	if err != nil {
		return nil, ErrClientNotFound
	}
	if client.OwnerID != ownerID {
		// Owner mismatch looks the same as not-found from the outside.
		return nil, ErrClientNotFound
	}
	return client, nil
}

func (s *ClientService) invalidate(ctx context.Context, clientID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, clientCacheKey(clientID)); err != nil {
		log.Printf("[Client] Cache invalidation failed for %s: %v", clientID, err)
	}
}

func isAbsoluteURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
