package hubclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient creates a client with retries disabled for predictable behavior
func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL:      baseURL,
		ClientID:     "client-1",
		ClientSecret: "dh_secret",
		Timeout:      5 * time.Second,
		MaxRetries:   0,
	})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestExchange_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/token", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostFormValue("grant_type"))
		assert.Equal(t, "code-abc", r.PostFormValue("code"))
		assert.Equal(t, "https://app.example.com/callback", r.PostFormValue("redirect_uri"))
		assert.Equal(t, "client-1", r.PostFormValue("client_id"))
		assert.Equal(t, "dh_secret", r.PostFormValue("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TokenResponse{
			AccessToken: "jwt-token",
			TokenType:   "Bearer",
			ExpiresIn:   1800,
			Scope:       "openid profile",
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	resp, err := c.Exchange(context.Background(), "code-abc", "https://app.example.com/callback")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 1800, resp.ExpiresIn)
}

func TestExchange_InvalidGrant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.Exchange(context.Background(), "stale-code", "https://app.example.com/callback")
	assert.ErrorIs(t, err, ErrInvalidGrant)
}

func TestExchange_InvalidClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.Exchange(context.Background(), "code-abc", "https://app.example.com/callback")
	assert.ErrorIs(t, err, ErrInvalidClient)
}

func TestVerify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/tokeninfo", r.URL.Path)
		assert.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TokenInfo{
			UserID:    "user-1",
			ClientID:  "client-1",
			Scope:     "openid profile",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	info, err := c.Verify(context.Background(), "jwt-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", info.UserID)
	assert.Equal(t, "client-1", info.ClientID)
}

func TestVerify_InvalidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.Verify(context.Background(), "revoked-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevoke_AlwaysOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/revoke", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "jwt-token", r.PostFormValue("token"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	assert.NoError(t, c.Revoke(context.Background(), "jwt-token"))
}

func TestValidateSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/validate_session", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("sid") {
		case "live-session":
			_ = json.NewEncoder(w).Encode(SessionInfo{UserID: "user-1", Username: "alice"})
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid session"}`))
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	info, err := c.ValidateSession(context.Background(), "live-session")
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Username)

	_, err = c.ValidateSession(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestExchange_ConnectionError(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	_, err := c.Exchange(context.Background(), "code", "https://app.example.com/callback")
	assert.ErrorIs(t, err, ErrConnection)
}
