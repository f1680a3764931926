package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientService_Register(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	svc := newClientService(s)
	owner := createTestUser(t, s, "owner")

	t.Run("Returns plaintext secret exactly once", func(t *testing.T) {
		resp := registerTestClient(t, svc, owner.ID)

		assert.NotEmpty(t, resp.ClientID)
		assert.True(t, strings.HasPrefix(resp.ClientSecretPlain, "dh_"))

		// The stored record holds only the bcrypt digest.
		stored, err := s.GetClient(resp.ClientID)
		require.NoError(t, err)
		assert.NotContains(t, stored.ClientSecretHash, resp.ClientSecretPlain)

		// Listing never exposes the secret again.
		list, err := svc.ListByOwner(owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Empty(t, list[0].ClientSecretPlain)
	})

	t.Run("Requires client name", func(t *testing.T) {
		_, err := svc.Register(ctx, owner.ID, CreateClientRequest{
			RedirectURI: "https://app.example.com/callback",
		})
		assert.ErrorIs(t, err, ErrClientNameRequired)
	})

	t.Run("Requires absolute redirect URI", func(t *testing.T) {
		for _, uri := range []string{"", "/relative/path", "not a url"} {
			_, err := svc.Register(ctx, owner.ID, CreateClientRequest{
				ClientName:  "Bad App",
				RedirectURI: uri,
			})
			assert.ErrorIs(t, err, ErrInvalidRedirectURI, "uri=%q", uri)
		}
	})

	t.Run("Defaults scopes when omitted", func(t *testing.T) {
		resp, err := svc.Register(ctx, owner.ID, CreateClientRequest{
			ClientName:  "Scopeless App",
			RedirectURI: "https://app.example.com/cb",
		})
		require.NoError(t, err)
		assert.Equal(t, "openid profile", resp.Scopes)
	})
}

func TestClientService_Lookup(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	svc := newClientService(s)
	owner := createTestUser(t, s, "owner")
	resp := registerTestClient(t, svc, owner.ID)

	t.Run("Resolves active client", func(t *testing.T) {
		client, err := svc.Lookup(ctx, resp.ClientID)
		require.NoError(t, err)
		assert.Equal(t, resp.ClientID, client.ClientID)
	})

	t.Run("Serves repeat lookups from cache", func(t *testing.T) {
		first, err := svc.Lookup(ctx, resp.ClientID)
		require.NoError(t, err)

		// Mutate the row behind the cache's back; the stale name proves
		// the second lookup never hit the database.
		row, err := s.GetClient(resp.ClientID)
		require.NoError(t, err)
		row.ClientName = "Renamed Behind Cache"
		require.NoError(t, s.UpdateClient(row))

		second, err := svc.Lookup(ctx, resp.ClientID)
		require.NoError(t, err)
		assert.Equal(t, first.ClientName, second.ClientName)
	})

	t.Run("Unknown client not found", func(t *testing.T) {
		_, err := svc.Lookup(ctx, "no-such-client")
		assert.ErrorIs(t, err, ErrClientNotFound)
	})
}

func TestClientService_VerifySecret(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	svc := newClientService(s)
	owner := createTestUser(t, s, "owner")
	resp := registerTestClient(t, svc, owner.ID)

	t.Run("Correct secret authenticates", func(t *testing.T) {
		client, err := svc.VerifySecret(ctx, resp.ClientID, resp.ClientSecretPlain)
		require.NoError(t, err)
		assert.Equal(t, resp.ClientID, client.ClientID)
	})

	t.Run("Failures are uniform", func(t *testing.T) {
		_, wrongErr := svc.VerifySecret(ctx, resp.ClientID, "dh_wrongsecret")
		_, unknownErr := svc.VerifySecret(ctx, "no-such-client", resp.ClientSecretPlain)
		_, emptyErr := svc.VerifySecret(ctx, resp.ClientID, "")

		assert.ErrorIs(t, wrongErr, ErrInvalidClientCredentials)
		assert.ErrorIs(t, unknownErr, ErrInvalidClientCredentials)
		assert.ErrorIs(t, emptyErr, ErrInvalidClientCredentials)
	})
}

func TestClientService_Deactivate(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	svc := newClientService(s)
	owner := createTestUser(t, s, "owner")
	other := createTestUser(t, s, "other")
	resp := registerTestClient(t, svc, owner.ID)

	t.Run("Only the owner may deactivate", func(t *testing.T) {
		err := svc.Deactivate(ctx, other.ID, resp.ClientID)
		assert.ErrorIs(t, err, ErrClientNotFound)
	})

	t.Run("Deactivation takes effect immediately despite the cache", func(t *testing.T) {
		// Warm the cache first.
		_, err := svc.Lookup(ctx, resp.ClientID)
		require.NoError(t, err)

		require.NoError(t, svc.Deactivate(ctx, owner.ID, resp.ClientID))

		_, err = svc.Lookup(ctx, resp.ClientID)
		assert.ErrorIs(t, err, ErrClientNotFound)
	})
}

func TestClientService_RotateSecret(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	svc := newClientService(s)
	owner := createTestUser(t, s, "owner")
	resp := registerTestClient(t, svc, owner.ID)

	rotated, err := svc.RotateSecret(ctx, owner.ID, resp.ClientID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rotated.ClientSecretPlain, "dh_"))
	assert.NotEqual(t, resp.ClientSecretPlain, rotated.ClientSecretPlain)

	// Old secret stops working immediately, new one authenticates.
	_, err = svc.VerifySecret(ctx, resp.ClientID, resp.ClientSecretPlain)
	assert.ErrorIs(t, err, ErrInvalidClientCredentials)

	_, err = svc.VerifySecret(ctx, resp.ClientID, rotated.ClientSecretPlain)
	assert.NoError(t, err)
}
