package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/masasa123jp/docshub/internal/models"
	"github.com/masasa123jp/docshub/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthorizationTest(t *testing.T) (*AuthorizationService, *ClientResponse, *models.User) {
	t.Helper()
	s := setupTestStore(t)
	clients := newClientService(s)
	svc := NewAuthorizationService(s, testConfig(), clients, nil, nil)

	owner := createTestUser(t, s, "appowner")
	user := createTestUser(t, s, "enduser")
	client := registerTestClient(t, clients, owner.ID)
	_ = owner
	return svc, client, user
}

func validRequest(t *testing.T, svc *AuthorizationService, client *ClientResponse) *AuthorizationRequest {
	t.Helper()
	req, err := svc.ValidateAuthorizationRequest(
		context.Background(),
		"code", client.ClientID, client.RedirectURI,
		"openid profile", "xyz-state", "n0nce",
	)
	require.NoError(t, err)
	return req
}

func TestAuthorizationService_ValidateAuthorizationRequest(t *testing.T) {
	ctx := context.Background()
	svc, client, _ := setupAuthorizationTest(t)

	t.Run("Accepts a fully specified request", func(t *testing.T) {
		req := validRequest(t, svc, client)
		assert.Equal(t, client.ClientID, req.Client.ClientID)
		assert.Equal(t, "xyz-state", req.State)
		assert.Equal(t, "n0nce", req.Nonce)
	})

	t.Run("Every parameter is mandatory", func(t *testing.T) {
		cases := []struct {
			name   string
			params [6]string
		}{
			{"missing response_type", [6]string{"", client.ClientID, client.RedirectURI, "openid", "st", "nc"}},
			{"missing client_id", [6]string{"code", "", client.RedirectURI, "openid", "st", "nc"}},
			{"missing redirect_uri", [6]string{"code", client.ClientID, "", "openid", "st", "nc"}},
			{"missing scope", [6]string{"code", client.ClientID, client.RedirectURI, "", "st", "nc"}},
			{"missing state", [6]string{"code", client.ClientID, client.RedirectURI, "openid", "", "nc"}},
			{"missing nonce", [6]string{"code", client.ClientID, client.RedirectURI, "openid", "st", ""}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				p := tc.params
				_, err := svc.ValidateAuthorizationRequest(ctx, p[0], p[1], p[2], p[3], p[4], p[5])
				assert.ErrorIs(t, err, ErrInvalidAuthRequest)
			})
		}
	})

	t.Run("Only response_type=code is supported", func(t *testing.T) {
		_, err := svc.ValidateAuthorizationRequest(ctx,
			"token", client.ClientID, client.RedirectURI, "openid", "st", "nc")
		assert.ErrorIs(t, err, ErrUnsupportedResponseType)
	})

	t.Run("Unknown client is refused", func(t *testing.T) {
		_, err := svc.ValidateAuthorizationRequest(ctx,
			"code", "no-such-client", client.RedirectURI, "openid", "st", "nc")
		assert.ErrorIs(t, err, ErrUnauthorizedClient)
	})

	t.Run("One character off in redirect_uri is a mismatch", func(t *testing.T) {
		_, err := svc.ValidateAuthorizationRequest(ctx,
			"code", client.ClientID, client.RedirectURI+"x", "openid", "st", "nc")
		assert.ErrorIs(t, err, ErrRedirectURIMismatch)

		trailingSlash := client.RedirectURI + "/"
		_, err = svc.ValidateAuthorizationRequest(ctx,
			"code", client.ClientID, trailingSlash, "openid", "st", "nc")
		assert.ErrorIs(t, err, ErrRedirectURIMismatch)
	})

	t.Run("Scope must be a subset of the registration", func(t *testing.T) {
		_, err := svc.ValidateAuthorizationRequest(ctx,
			"code", client.ClientID, client.RedirectURI, "openid admin", "st", "nc")
		assert.ErrorIs(t, err, ErrInvalidScope)
	})
}

func TestAuthorizationService_IssueAndRedeemCode(t *testing.T) {
	ctx := context.Background()
	svc, client, user := setupAuthorizationTest(t)
	req := validRequest(t, svc, client)

	t.Run("Roundtrip", func(t *testing.T) {
		plainCode, err := svc.IssueCode(ctx, req, user.ID)
		require.NoError(t, err)
		assert.Len(t, plainCode, 64)

		record, err := svc.RedeemCode(ctx, plainCode, client.ClientID, client.RedirectURI)
		require.NoError(t, err)
		assert.Equal(t, user.ID, record.UserID)
		assert.Equal(t, "n0nce", record.Nonce)
		assert.Equal(t, "openid profile", record.Scopes)
	})

	t.Run("Codes are stored hashed", func(t *testing.T) {
		plainCode, err := svc.IssueCode(ctx, req, user.ID)
		require.NoError(t, err)

		_, err = svc.store.GetAuthorizationCodeByHash(plainCode)
		assert.Error(t, err, "plaintext must not work as a lookup key")

		_, err = svc.store.GetAuthorizationCodeByHash(util.SHA256Hex(plainCode))
		assert.NoError(t, err)
	})

	t.Run("Exchange may omit redirect_uri", func(t *testing.T) {
		plainCode, err := svc.IssueCode(ctx, req, user.ID)
		require.NoError(t, err)

		record, err := svc.RedeemCode(ctx, plainCode, client.ClientID, "")
		require.NoError(t, err)
		assert.Equal(t, user.ID, record.UserID)
	})

	t.Run("Second redemption fails", func(t *testing.T) {
		plainCode, err := svc.IssueCode(ctx, req, user.ID)
		require.NoError(t, err)

		_, err = svc.RedeemCode(ctx, plainCode, client.ClientID, client.RedirectURI)
		require.NoError(t, err)

		_, err = svc.RedeemCode(ctx, plainCode, client.ClientID, client.RedirectURI)
		assert.ErrorIs(t, err, ErrInvalidGrant)
	})

	t.Run("Redemption failures are uniform", func(t *testing.T) {
		plainCode, err := svc.IssueCode(ctx, req, user.ID)
		require.NoError(t, err)

		_, unknownErr := svc.RedeemCode(ctx, "not-a-code", client.ClientID, client.RedirectURI)
		_, wrongClientErr := svc.RedeemCode(ctx, plainCode, "other-client", client.RedirectURI)
		_, wrongRedirectErr := svc.RedeemCode(ctx, plainCode, client.ClientID, "https://evil.example.com/cb")

		assert.ErrorIs(t, unknownErr, ErrInvalidGrant)
		assert.ErrorIs(t, wrongClientErr, ErrInvalidGrant)
		assert.ErrorIs(t, wrongRedirectErr, ErrInvalidGrant)

		// The binding failures above must not have consumed the code.
		_, err = svc.RedeemCode(ctx, plainCode, client.ClientID, client.RedirectURI)
		assert.NoError(t, err)
	})

	t.Run("Expired code is rejected and removed", func(t *testing.T) {
		plainCode, err := svc.IssueCode(ctx, req, user.ID)
		require.NoError(t, err)

		hash := util.SHA256Hex(plainCode)
		record, err := svc.store.GetAuthorizationCodeByHash(hash)
		require.NoError(t, err)
		record.ExpiresAt = time.Now().Add(-time.Minute)
		require.NoError(t, svc.store.DB().Save(record).Error)

		_, err = svc.RedeemCode(ctx, plainCode, client.ClientID, client.RedirectURI)
		assert.ErrorIs(t, err, ErrInvalidGrant)

		_, err = svc.store.GetAuthorizationCodeByHash(hash)
		assert.Error(t, err, "expired code should be consumed on sight")
	})
}

func TestAuthorizationService_ConcurrentRedemption(t *testing.T) {
	ctx := context.Background()
	svc, client, user := setupAuthorizationTest(t)
	req := validRequest(t, svc, client)

	plainCode, err := svc.IssueCode(ctx, req, user.ID)
	require.NoError(t, err)

	const attempts = 10
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.RedeemCode(ctx, plainCode, client.ClientID, client.RedirectURI)
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrInvalidGrant)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent redemption may succeed")
}
