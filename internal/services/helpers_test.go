package services

import (
	"context"
	"testing"
	"time"

	"github.com/masasa123jp/docshub/internal/cache"
	"github.com/masasa123jp/docshub/internal/config"
	"github.com/masasa123jp/docshub/internal/models"
	"github.com/masasa123jp/docshub/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerAddr:         ":8080",
		BaseURL:            "http://localhost:8080",
		JWTSecret:          "test-secret-key-for-tests-only",
		TokenExpiration:    30 * time.Minute,
		SessionExpiration:  24 * time.Hour,
		AuthCodeExpiration: 10 * time.Minute,
		ClientCacheTTL:     time.Minute,
	}
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)
	return s
}

func createTestUser(t *testing.T, s *store.Store, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         "user",
		IsActive:     true,
	}
	require.NoError(t, s.CreateUser(user))
	return user
}

// registerTestClient creates an active client via the service and returns the
// registration response including the one-time plaintext secret.
func registerTestClient(
	t *testing.T,
	clients *ClientService,
	ownerID string,
) *ClientResponse {
	t.Helper()
	resp, err := clients.Register(context.Background(), ownerID, CreateClientRequest{
		ClientName:  "Test App",
		RedirectURI: "https://app.example.com/callback",
		Scopes:      "openid profile",
	})
	require.NoError(t, err)
	return resp
}

func newClientService(s *store.Store) *ClientService {
	return NewClientService(s, cache.NewMemoryCache[models.Client](), time.Minute, nil, nil)
}
